package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// credentialRow is the single-row table behind BunStore. The slot id is
// fixed; Save upserts over it.
type credentialRow struct {
	bun.BaseModel `bun:"table:session_credentials,alias:sc"`

	ID         int64     `bun:"id,pk"`
	Credential string    `bun:"credential,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

const credentialSlotID = 1

// BunStore keeps the credential in a SQLite table via bun, for clients that
// already carry a local database. It offers no external change detection;
// Watch only observes in-process Save and Clear.
type BunStore struct {
	db *bun.DB

	events broadcaster
}

var _ TokenStore = (*BunStore)(nil)

// OpenSQLite opens a bun handle over the bundled SQLite driver.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, ErrStoreUnavailable.Category, "open sqlite credential store").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewBunStore ensures the credential table exists and returns the store.
func NewBunStore(ctx context.Context, db *bun.DB) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("bun DB is required", errors.CategoryValidation)
	}

	if _, err := db.NewCreateTable().
		Model((*credentialRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, errors.Wrap(err, ErrStoreUnavailable.Category, "create credential table").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	return &BunStore{db: db}, nil
}

func (s *BunStore) Load(ctx context.Context) (string, bool, error) {
	row := new(credentialRow)
	err := s.db.NewSelect().
		Model(row).
		Where("sc.id = ?", credentialSlotID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, ErrStoreUnavailable.Category, "load credential").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	if row.Credential == "" {
		return "", false, nil
	}
	return row.Credential, true, nil
}

func (s *BunStore) Save(ctx context.Context, credential string) error {
	row := &credentialRow{
		ID:         credentialSlotID,
		Credential: credential,
		UpdatedAt:  time.Now(),
	}

	if _, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("credential = EXCLUDED.credential").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return errors.Wrap(err, ErrStoreUnavailable.Category, "save credential").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	s.events.publish(StoreEvent{Credential: credential, Present: true})
	return nil
}

func (s *BunStore) Clear(ctx context.Context) error {
	if _, err := s.db.NewDelete().
		Model((*credentialRow)(nil)).
		Where("id = ?", credentialSlotID).
		Exec(ctx); err != nil {
		return errors.Wrap(err, ErrStoreUnavailable.Category, "clear credential").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	s.events.publish(StoreEvent{})
	return nil
}

func (s *BunStore) Watch(_ context.Context, fn func(StoreEvent)) (func(), error) {
	return s.events.subscribe(fn), nil
}

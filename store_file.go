package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
)

const defaultPollInterval = 2 * time.Second

// FileStore persists the credential in a single file, the durable-storage
// slot of a desktop or CLI client. Watch detects writes made by other
// processes by polling, since the cross-context change signal is best effort
// rather than transactional.
type FileStore struct {
	path     string
	pollSkew time.Duration
	logger   Logger

	mu    sync.Mutex
	known string
	seen  bool

	events broadcaster
}

var _ TokenStore = (*FileStore)(nil)

type FileStoreOption func(*FileStore)

// WithFileStorePollInterval overrides how often Watch re-reads the file.
func WithFileStorePollInterval(d time.Duration) FileStoreOption {
	return func(s *FileStore) {
		if d > 0 {
			s.pollSkew = d
		}
	}
}

func WithFileStoreLogger(logger Logger) FileStoreOption {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("credential file path is required", errors.CategoryValidation)
	}

	s := &FileStore{
		path:     path,
		pollSkew: defaultPollInterval,
		logger:   defLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FileStore) Load(_ context.Context) (string, bool, error) {
	credential, ok, err := s.read()
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	s.known = credential
	s.seen = ok
	s.mu.Unlock()

	return credential, ok, nil
}

func (s *FileStore) Save(_ context.Context, credential string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, ErrStoreUnavailable.Category, "mkdir credential dir").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}
	if err := os.WriteFile(s.path, []byte(credential), 0o600); err != nil {
		return errors.Wrap(err, ErrStoreUnavailable.Category, "write credential file").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	s.mu.Lock()
	s.known = credential
	s.seen = true
	s.mu.Unlock()

	s.events.publish(StoreEvent{Credential: credential, Present: true})
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, ErrStoreUnavailable.Category, "remove credential file").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	s.mu.Lock()
	wasSeen := s.seen
	s.known = ""
	s.seen = false
	s.mu.Unlock()

	if wasSeen {
		s.events.publish(StoreEvent{})
	}
	return nil
}

// Watch notifies fn of slot changes. In-process Save/Clear notify
// immediately; external writers are picked up by the poller until ctx is
// cancelled or stop is called.
func (s *FileStore) Watch(ctx context.Context, fn func(StoreEvent)) (func(), error) {
	stopFanout := s.events.subscribe(fn)

	pollCtx, cancel := context.WithCancel(ctx)
	go s.poll(pollCtx)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			stopFanout()
		})
	}, nil
}

func (s *FileStore) poll(ctx context.Context) {
	ticker := time.NewTicker(s.pollSkew)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkExternal()
		}
	}
}

func (s *FileStore) checkExternal() {
	credential, ok, err := s.read()
	if err != nil {
		s.logger.Warn("credential file poll error", "error", err)
		return
	}

	s.mu.Lock()
	changed := ok != s.seen || credential != s.known
	s.known = credential
	s.seen = ok
	s.mu.Unlock()

	if changed {
		s.events.publish(StoreEvent{Credential: credential, Present: ok})
	}
}

func (s *FileStore) read() (string, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, ErrStoreUnavailable.Category, "read credential file").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	credential := strings.TrimSpace(string(b))
	if credential == "" {
		return "", false, nil
	}
	return credential, true, nil
}

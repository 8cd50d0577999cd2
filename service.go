package session

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// LoginRequest carries the credentials submitted to the authentication
// endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// Service is the process-wide source of truth for "who is logged in". It is
// constructed once at application start, injected into consumers, and torn
// down with Close.
//
// Transitions keep two orderings: a credential is persisted to the store
// before the session publishes as authenticated, and logout clears the store
// before publishing the unauthenticated snapshot. Every transition that
// clears the credential advances an epoch counter; a login that resolves
// after the epoch moved discards its result instead of re-authenticating a
// session the user already left.
type Service struct {
	store  TokenStore
	auth   Authenticator
	logger Logger
	now    func() time.Time

	mu      sync.Mutex
	current Session
	epoch   uint64

	subMu  sync.Mutex
	subs   map[int]func(Session)
	nextID int

	events    chan StoreEvent
	done      chan struct{}
	stopWatch func()
	closeOnce sync.Once
}

type ServiceOption func(*Service)

func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService wires the session service to its token store and authentication
// collaborator, and subscribes to store change notifications so a credential
// cleared by another client of the same store logs this one out too.
func NewService(store TokenStore, auth Authenticator, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("token store is required", errors.CategoryValidation)
	}
	if auth == nil {
		return nil, errors.New("authenticator is required", errors.CategoryValidation)
	}

	s := &Service{
		store:  store,
		auth:   auth,
		logger: defLogger{},
		now:    time.Now,
		subs:   make(map[int]func(Session)),
		events: make(chan StoreEvent, 8),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	stop, err := store.Watch(context.Background(), s.onStoreEvent)
	if err != nil {
		return nil, errors.Wrap(err, ErrStoreUnavailable.Category, "subscribe to store changes").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}
	s.stopWatch = stop

	go s.eventLoop()

	return s, nil
}

// Close releases the store subscription and stops event handling. The
// service must not be used afterwards.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		if s.stopWatch != nil {
			s.stopWatch()
		}
		close(s.done)
	})
}

// Init seeds the session from the token store. A stored credential that
// decodes cleanly and is not expired authenticates the session in a single
// update, so no observer sees credential and claims arrive separately. A
// credential that fails decoding or is already expired is treated as no
// session at all and removed from the store.
func (s *Service) Init(ctx context.Context) error {
	credential, ok, err := s.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, ErrStoreUnavailable.Category, "load stored credential").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}
	if !ok {
		return nil
	}

	claims, derr := DecodeClaims(credential)
	switch {
	case derr != nil:
		s.logger.Debug("discarding stored credential: decode failed", "error", derr)
	case claims.Expired(s.now()):
		s.logger.Debug("discarding stored credential: expired", "claims", claims)
	default:
		s.mu.Lock()
		s.current = Session{Credential: credential, Claims: claims}
		snap := s.current
		s.mu.Unlock()

		s.notify(snap)
		return nil
	}

	s.mu.Lock()
	s.epoch++
	s.current = Session{}
	s.mu.Unlock()

	if cerr := s.store.Clear(ctx); cerr != nil {
		s.logger.Warn("failed to clear unusable stored credential", "error", cerr)
	}
	return nil
}

// Login exchanges the submitted credentials for a bearer token and
// authenticates the session. The loading flag is raised for the duration of
// the remote call and always lowered before Login returns, whatever path the
// call takes.
func (s *Service) Login(ctx context.Context, req LoginRequest) error {
	if err := req.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid login request")
	}

	s.mu.Lock()
	startEpoch := s.epoch
	s.current.Loading = true
	snap := s.current
	s.mu.Unlock()
	s.notify(snap)

	defer func() {
		s.mu.Lock()
		s.current.Loading = false
		snap := s.current
		s.mu.Unlock()
		s.notify(snap)
	}()

	token, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("login rejected", "error", err)
		return errors.Wrap(err, ErrLoginRejected.Category, ErrLoginRejected.Message).
			WithTextCode(ErrLoginRejected.TextCode)
	}
	if token == "" {
		s.logger.Warn("authentication endpoint returned no credential")
		return loginFailure("authentication endpoint returned no credential")
	}

	claims, derr := DecodeClaims(token)
	if derr != nil {
		s.logger.Warn("authentication endpoint returned an undecodable credential", "error", derr)
		return loginFailure("authentication endpoint returned an unusable credential")
	}
	if claims.Expired(s.now()) {
		s.logger.Warn("authentication endpoint returned an expired credential", "claims", claims)
		return loginFailure("authentication endpoint returned an expired credential")
	}

	s.mu.Lock()
	if s.epoch != startEpoch {
		s.mu.Unlock()
		s.logger.Info("discarding login result: session changed while login was in flight")
		return ErrLoginSuperseded
	}

	// Persist before publishing: nobody may observe an authenticated
	// session whose credential is not yet durable.
	if serr := s.store.Save(ctx, token); serr != nil {
		s.mu.Unlock()
		return errors.Wrap(serr, ErrStoreUnavailable.Category, "persist credential").
			WithTextCode(ErrStoreUnavailable.TextCode)
	}

	s.epoch++
	s.current = Session{Credential: token, Claims: claims}
	s.mu.Unlock()

	return nil
}

// Logout clears the store and resets the session, in that order. It is
// idempotent and safe to call from any context, including the gateway
// client's unauthorized signal.
func (s *Service) Logout() {
	s.mu.Lock()
	s.epoch++
	if err := s.store.Clear(context.Background()); err != nil {
		s.logger.Warn("failed to clear token store on logout", "error", err)
	}
	s.current = Session{}
	snap := s.current
	s.mu.Unlock()

	s.notify(snap)
}

// HandleUnauthorized is the target of the gateway client's 401 signal. The
// credential the server rejected is treated like any other dead session.
func (s *Service) HandleUnauthorized() {
	s.logger.Info("credential rejected by server, logging out")
	s.Logout()
}

// Current returns the session snapshot.
func (s *Service) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Authenticated reports whether the current session is live.
func (s *Service) Authenticated() bool {
	s.mu.Lock()
	snap := s.current
	s.mu.Unlock()
	return snap.AuthenticatedAt(s.now())
}

// Subscribe registers fn for session snapshots. The returned stop function
// releases the subscription and is safe to call more than once.
func (s *Service) Subscribe(fn func(Session)) (stop func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Service) notify(snap Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Service) onStoreEvent(event StoreEvent) {
	select {
	case <-s.done:
	case s.events <- event:
	default:
		s.logger.Warn("dropping store event, queue full")
	}
}

func (s *Service) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.applyStoreEvent(event)
		}
	}
}

// applyStoreEvent reconciles externally observed store changes: a cleared
// slot logs this session out, a different credential written by another
// client is adopted when usable and discarded when not.
func (s *Service) applyStoreEvent(event StoreEvent) {
	s.mu.Lock()

	if !event.Present {
		if s.current.Credential == "" {
			s.mu.Unlock()
			return
		}
		s.logger.Info("credential cleared externally, logging out")
		s.epoch++
		s.current = Session{}
		snap := s.current
		s.mu.Unlock()

		s.notify(snap)
		return
	}

	if event.Credential == s.current.Credential {
		s.mu.Unlock()
		return
	}

	claims, err := DecodeClaims(event.Credential)
	if err != nil || claims.Expired(s.now()) {
		s.logger.Warn("ignoring unusable externally written credential", "error", err)
		s.epoch++
		s.current = Session{}
		snap := s.current
		s.mu.Unlock()

		s.notify(snap)
		return
	}

	s.logger.Info("adopting externally written credential", "claims", claims)
	s.epoch++
	s.current = Session{Credential: event.Credential, Claims: claims}
	snap := s.current
	s.mu.Unlock()

	s.notify(snap)
}

func loginFailure(message string) error {
	clone := ErrLoginRejected.Clone()
	if clone == nil {
		return ErrLoginRejected
	}
	clone.Message = message
	clone.Source = ErrLoginRejected
	return clone
}

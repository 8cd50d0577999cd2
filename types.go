package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore persists the bearer credential across process restarts. There is
// exactly one credential slot; Save overwrites whatever was there before.
type TokenStore interface {
	Load(ctx context.Context) (credential string, ok bool, err error)
	Save(ctx context.Context, credential string) error
	Clear(ctx context.Context) error

	// Watch registers fn for changes made to the slot, including changes made
	// by other processes where the backing medium allows detecting them.
	// Delivery is best effort. The returned stop function releases the
	// subscription and is safe to call more than once.
	Watch(ctx context.Context, fn func(StoreEvent)) (stop func(), err error)
}

// StoreEvent describes an observed change to the credential slot.
type StoreEvent struct {
	Credential string
	Present    bool
}

// Authenticator exchanges user credentials for a bearer token. The client
// package's AuthAPI satisfies this against the remote authentication
// endpoint.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
}

// Config holds route guard and storage options
type Config interface {
	GetLoginRoute() string
	GetReturnToKey() string
	GetReturnToDefault() string
	GetStorageKey() string
}

// SimpleConfig is a literal Config for programs that do not bring their own
// configuration layer. Zero values fall back to the defaults the HAP front
// end shipped with.
type SimpleConfig struct {
	LoginRoute      string
	ReturnToKey     string
	ReturnToDefault string
	StorageKey      string
}

func (c SimpleConfig) GetLoginRoute() string {
	if c.LoginRoute == "" {
		return "/login"
	}
	return c.LoginRoute
}

func (c SimpleConfig) GetReturnToKey() string {
	if c.ReturnToKey == "" {
		return "rejected_route"
	}
	return c.ReturnToKey
}

func (c SimpleConfig) GetReturnToDefault() string {
	if c.ReturnToDefault == "" {
		return "/"
	}
	return c.ReturnToDefault
}

func (c SimpleConfig) GetStorageKey() string {
	if c.StorageKey == "" {
		return "token"
	}
	return c.StorageKey
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

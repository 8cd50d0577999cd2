// Package client is the API gateway client for the HAP hospital
// administration API. It attaches the stored bearer credential to every
// outgoing request and funnels authorization failures into a single
// unauthorized signal, so individual screens never handle stale credentials
// themselves.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-errors"
	session "github.com/samichen99/hap-session"
)

const defaultBaseURL = "http://localhost:8080"
const defaultUserAgent = "hap-session/0.1"

// Config wires the token store, transport, and failure signaling for the
// gateway client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      session.TokenStore
	UserAgent  string
	Logger     session.Logger

	// OnUnauthorized is invoked once per call that the server rejects with
	// 401, before the error is returned. Wire it to the session service's
	// HandleUnauthorized so a stale credential logs the whole client out.
	OnUnauthorized func()
}

// Client dispatches authenticated requests against the HAP REST API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          session.TokenStore
	userAgent      string
	logger         session.Logger
	onUnauthorized func()

	// Grouped service clients.
	Auth           *AuthAPI
	Patients       *Resource[Patient]
	Doctors        *Resource[Doctor]
	Appointments   *Resource[Appointment]
	Invoices       *Resource[Invoice]
	Payments       *Resource[Payment]
	MedicalRecords *Resource[MedicalRecord]
	Files          *Resource[File]
	Users          *Resource[User]
}

// New validates the configuration and returns a ready-to-use Client.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	if cfg.Store == nil {
		return nil, errors.New("token store is required", errors.CategoryValidation)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Client{
		baseURL:        normalized,
		httpClient:     httpClient,
		store:          cfg.Store,
		userAgent:      ua,
		logger:         logger,
		onUnauthorized: cfg.OnUnauthorized,
	}

	c.Auth = &AuthAPI{client: c}
	c.Patients = &Resource[Patient]{client: c, base: "/api/patients"}
	c.Doctors = &Resource[Doctor]{client: c, base: "/api/doctors"}
	c.Appointments = &Resource[Appointment]{client: c, base: "/api/appointments"}
	c.Invoices = &Resource[Invoice]{client: c, base: "/api/invoices"}
	c.Payments = &Resource[Payment]{client: c, base: "/api/payments"}
	c.MedicalRecords = &Resource[MedicalRecord]{client: c, base: "/api/medical-records"}
	c.Files = &Resource[File]{client: c, base: "/api/files"}
	c.Users = &Resource[User]{client: c, base: "/api/users"}

	return c, nil
}

// Health checks the API's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("base URL required", errors.CategoryValidation)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryValidation, "invalid base URL")
	}
	if u.Scheme == "" {
		return "", errors.New("base URL missing scheme (http/https)", errors.CategoryValidation)
	}
	if u.Host == "" {
		return "", errors.New("base URL missing host", errors.CategoryValidation)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "encode request payload")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// prepare attaches the user agent and the bearer credential. The credential
// is read from the token store on every call, not from the session state, so
// the transport never depends on a render cycle.
func (c *Client) prepare(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)

	credential, ok, err := c.store.Load(req.Context())
	if err != nil {
		c.logger.Warn("could not read credential for request", "error", err)
		return
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
}

// do sends the request and decodes a JSON response into out when provided.
// Failed calls are not retried; the caller owns page-level messaging.
func (c *Client) do(req *http.Request, out any) error {
	return c.dispatch(req, out, true)
}

// doUnsignaled skips the unauthorized hook. The login endpoint uses it: a
// 401 there is a rejection of the submitted credentials, not a stale
// session.
func (c *Client) doUnsignaled(req *http.Request, out any) error {
	return c.dispatch(req, out, false)
}

func (c *Client) dispatch(req *http.Request, out any, signalUnauthorized bool) error {
	c.prepare(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "request failed").
			WithTextCode("TRANSPORT_FAILURE")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "read response body").
			WithTextCode("TRANSPORT_FAILURE")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if signalUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiError(resp.StatusCode, body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "decode response body")
	}
	return nil
}

// apiError converts a non-2xx response into a categorized error, pulling the
// human-readable message from JSON bodies when the server sends one.
func apiError(status int, body []byte) error {
	message := strings.TrimSpace(string(body))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			message = payload.Error
		} else if payload.Message != "" {
			message = payload.Message
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}

	category := errors.CategoryOperation
	switch status {
	case http.StatusUnauthorized:
		category = errors.CategoryAuth
	case http.StatusForbidden:
		category = errors.CategoryAuthz
	case http.StatusNotFound:
		category = errors.CategoryNotFound
	case http.StatusBadRequest:
		category = errors.CategoryBadInput
	}

	return errors.New(fmt.Sprintf("api: %s", message), category).WithCode(status)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

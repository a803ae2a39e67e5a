package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxErrorBody       = 4 << 10
)

// Config configures a Manager.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
	// Key names the credential slot in the Store.
	Key string
}

// Registration is the payload of Signup.
type Registration struct {
	Email       string `json:"identifier"`
	Secret      string `json:"secret"`
	DisplayName string `json:"display_name"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Actor     domain.Actor `json:"actor"`
}

type actorResponse struct {
	Actor domain.Actor `json:"actor"`
}

// Manager owns the client-held credential and every call to the credential
// issuer. It is the only writer of the credential slot; all slot access is
// serialised so a clear is visible to every later read.
type Manager struct {
	baseURL string
	client  *http.Client
	store   Store
	key     string
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	verify   singleflight.Group
	onClear  []func()
	hookLock sync.Mutex
}

func NewManager(cfg Config, store Store, log zerolog.Logger) *Manager {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	return &Manager{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		store:   store,
		key:     key,
		log:     log,
		now:     time.Now,
	}
}

// OnClear registers fn to run after the credential slot is emptied.
func (m *Manager) OnClear(fn func()) {
	m.hookLock.Lock()
	defer m.hookLock.Unlock()
	m.onClear = append(m.onClear, fn)
}

// Login exchanges an identifier and secret for a credential. Nothing is
// persisted on failure.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (*domain.Actor, error) {
	body := map[string]string{"identifier": identifier, "secret": secret}
	return m.issue(ctx, "/auth/login", body)
}

// Signup registers an account and persists the credential it comes with.
func (m *Manager) Signup(ctx context.Context, reg Registration) (*domain.Actor, error) {
	return m.issue(ctx, "/auth/signup", reg)
}

// VerifyCurrent resolves the stored credential to its actor. Without a
// stored credential it fails with domain.ErrUnauthenticated and makes no
// request. A rejected credential is cleared before the error is returned.
// Concurrent calls share one request; a caller whose ctx ends early gets
// ctx.Err() and the shared request still completes.
func (m *Manager) VerifyCurrent(ctx context.Context) (*domain.Actor, error) {
	cred, ok, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	ch := m.verify.DoChan(cred.RawToken, func() (interface{}, error) {
		return m.verifyToken(context.WithoutCancel(ctx), cred.RawToken)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Actor), nil
	}
}

// Refresh swaps the stored credential for a freshly issued one.
func (m *Manager) Refresh(ctx context.Context) (*domain.Actor, error) {
	cred, ok, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	req, err := m.newRequest(ctx, http.MethodPost, "/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.RawToken)

	var out tokenResponse
	if err := m.roundTrip(req, cred.RawToken, &out); err != nil {
		return nil, err
	}
	if err := m.persist(ctx, out.Token, out.ExpiresAt); err != nil {
		return nil, err
	}
	return &out.Actor, nil
}

// Logout asks the server to revoke the credential and then clears it
// locally. Server errors are logged, never returned.
func (m *Manager) Logout(ctx context.Context) {
	cred, ok, err := m.current(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("read credential on logout")
	}

	if ok {
		req, err := m.newRequest(ctx, http.MethodPost, "/auth/logout", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+cred.RawToken)
			err = m.roundTrip(req, "", nil)
		}
		if err != nil {
			m.log.Debug().Err(err).Msg("server-side logout failed")
		}
	}

	m.clear(ctx, "")
}

// Do sends req with the stored bearer token attached when one exists. A 401
// answer clears the credential; the response is returned either way.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	cred, ok, err := m.current(req.Context())
	if err != nil {
		return nil, err
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+cred.RawToken)
	} else {
		req.Header.Del("Authorization")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, networkError(req.Method+" "+req.URL.Path, err)
	}
	if ok && rejectsCredential(resp.StatusCode) {
		m.clear(req.Context(), cred.RawToken)
	}
	return resp, nil
}

// Call sends a JSON request to path with the stored bearer token attached
// and decodes a 2xx answer into out. Non-2xx answers come back as
// *RemoteError; a 401 clears the credential.
func (m *Manager) Call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := m.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	cred, ok, err := m.current(ctx)
	if err != nil {
		return err
	}
	bearer := ""
	if ok {
		bearer = cred.RawToken
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return m.roundTrip(req, bearer, out)
}

// URL joins path onto the configured server root.
func (m *Manager) URL(path string) string {
	return m.baseURL + path
}

// Authenticated reports whether a usable credential is stored.
func (m *Manager) Authenticated(ctx context.Context) bool {
	_, ok, err := m.current(ctx)
	return err == nil && ok
}

func (m *Manager) issue(ctx context.Context, path string, payload any) (*domain.Actor, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := m.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	var out tokenResponse
	if err := m.roundTrip(req, "", &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%s: empty token in response: %w", path, domain.ErrNetwork)
	}
	if err := m.persist(ctx, out.Token, out.ExpiresAt); err != nil {
		return nil, err
	}
	return &out.Actor, nil
}

func (m *Manager) verifyToken(ctx context.Context, token string) (*domain.Actor, error) {
	req, err := m.newRequest(ctx, http.MethodGet, "/auth/verify", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out actorResponse
	if err := m.roundTrip(req, token, &out); err != nil {
		// The issuer answers 403 for deactivated accounts; that is a
		// rejection of the credential too.
		var re *RemoteError
		if errors.As(err, &re) && re.Status == http.StatusForbidden {
			m.clear(ctx, token)
		}
		return nil, err
	}
	return &out.Actor, nil
}

func (m *Manager) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, m.URL(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// roundTrip executes req and decodes a 2xx body into out. When bearer is
// set and the server rejects it, the slot is cleared if it still holds that
// token.
func (m *Manager) roundTrip(req *http.Request, bearer string, out any) error {
	op := req.Method + " " + req.URL.Path

	resp, err := m.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return networkError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return networkError(op, fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	if bearer != "" && rejectsCredential(resp.StatusCode) {
		m.clear(req.Context(), bearer)
	}
	return remoteError(resp, req.URL.Path)
}

func remoteError(resp *http.Response, path string) *RemoteError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}

	kind := kindForStatus(resp.StatusCode)
	if strings.HasPrefix(path, "/auth/") && resp.StatusCode == http.StatusForbidden {
		kind = domain.ErrUnauthenticated
	}
	return &RemoteError{Status: resp.StatusCode, Message: msg, Kind: kind}
}

// current loads the stored credential. Unreadable or expired entries are
// removed and reported as absent.
func (m *Manager) current(ctx context.Context) (domain.Credential, bool, error) {
	m.mu.Lock()
	raw, err := m.store.Get(ctx, m.key)
	if err != nil {
		m.mu.Unlock()
		return domain.Credential{}, false, fmt.Errorf("read credential: %w", err)
	}
	if raw == "" {
		m.mu.Unlock()
		return domain.Credential{}, false, nil
	}

	cred, err := decodeCredential(raw)
	if err == nil && !cred.Expired(m.now()) {
		m.mu.Unlock()
		return cred, true, nil
	}

	if err != nil {
		m.log.Warn().Err(err).Msg("discarding stored credential")
	}
	delErr := m.store.Delete(ctx, m.key)
	m.mu.Unlock()

	if delErr != nil {
		return domain.Credential{}, false, fmt.Errorf("clear credential: %w", delErr)
	}
	m.notifyClear()
	return domain.Credential{}, false, nil
}

// persist stores token with the expiry the server reported. Without one, or
// with one already past on the local clock, the default lifetime applies.
func (m *Manager) persist(ctx context.Context, token string, expiresAt time.Time) error {
	now := m.now()
	cred := domain.NewCredential(token, now)
	if expiresAt.After(now) {
		cred.ExpiresAt = expiresAt
	}
	value, err := encodeCredential(cred)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Set(ctx, m.key, value); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

// clear empties the slot. With a non-empty token the slot is cleared only
// while it still holds that token, so a late rejection of an old credential
// cannot remove a newer one.
func (m *Manager) clear(ctx context.Context, token string) {
	ctx = context.WithoutCancel(ctx)

	m.mu.Lock()
	if token != "" {
		raw, err := m.store.Get(ctx, m.key)
		if err != nil || raw == "" {
			m.mu.Unlock()
			return
		}
		if cred, err := decodeCredential(raw); err == nil && cred.RawToken != token {
			m.mu.Unlock()
			return
		}
	}
	err := m.store.Delete(ctx, m.key)
	m.mu.Unlock()

	if err != nil {
		m.log.Error().Err(err).Msg("failed to clear credential")
		return
	}
	m.notifyClear()
}

func (m *Manager) notifyClear() {
	m.hookLock.Lock()
	hooks := append([]func(){}, m.onClear...)
	m.hookLock.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

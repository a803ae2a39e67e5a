package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

type fakeServer struct {
	mu      sync.Mutex
	pinBody map[string]any
	pinCode int
}

func (f *fakeServer) handler() http.Handler {
	admin := domain.Actor{ID: "u1", DisplayName: "Ann", Role: domain.RoleAdmin, IsActive: true}
	writeJSON := func(w http.ResponseWriter, code int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(v)
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok-1"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["secret"] != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok-1", "actor": admin})
	})
	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"actor": admin})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"actor":              admin,
			"allowed_categories": []string{"testimonies", "events"},
			"capabilities":       []string{"post_content", "pin_content"},
		})
	})
	mux.HandleFunc("/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": "a", "pinned": true},
			{"id": "b", "pinned": true},
			{"id": "c", "pinned": false},
		}})
	})
	mux.HandleFunc("/v1/posts/p1/pin", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&f.pinBody)
		if f.pinCode != 0 {
			writeJSON(w, f.pinCode, map[string]string{"error": "pinned item limit reached (limit 3); unpin one first"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "p1", "pinned": true})
	})
	return mux
}

func execute(t *testing.T, srv *httptest.Server, creds string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", srv.URL, "--credentials", creds, "--log-level", "off"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newFixture(t *testing.T) (*fakeServer, *httptest.Server, string) {
	t.Helper()
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, srv, filepath.Join(t.TempDir(), "credentials.json")
}

func TestLoginWhoamiLogout(t *testing.T) {
	_, srv, creds := newFixture(t)

	out, err := execute(t, srv, creds, "hunter2\n", "login", "--email", "ann@example.org")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "signed in as Ann (admin)") {
		t.Fatalf("login output = %q", out)
	}
	raw, err := os.ReadFile(creds)
	if err != nil || !strings.Contains(string(raw), "tok-1") {
		t.Fatalf("credential file = %q, %v", raw, err)
	}

	out, err = execute(t, srv, creds, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "role:         admin") || !strings.Contains(out, "testimonies, events") {
		t.Fatalf("whoami output = %q", out)
	}

	if _, err := execute(t, srv, creds, "", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, err = execute(t, srv, creds, "", "whoami")
	if err != nil {
		t.Fatalf("whoami after logout: %v", err)
	}
	if !strings.Contains(out, "not signed in") {
		t.Fatalf("whoami after logout = %q", out)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	_, srv, creds := newFixture(t)

	_, err := execute(t, srv, creds, "", "login", "--email", "ann@example.org", "--password", "nope")
	if err == nil || !strings.Contains(err.Error(), "invalid email or password") {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(creds); !os.IsNotExist(statErr) {
		t.Fatal("a failed login must not write a credential")
	}
}

func TestPin_CountsPinnedItems(t *testing.T) {
	f, srv, creds := newFixture(t)
	if _, err := execute(t, srv, creds, "", "login", "--email", "ann@example.org", "--password", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := execute(t, srv, creds, "", "pin", "posts", "p1")
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if !strings.Contains(out, "p1 pinned") {
		t.Fatalf("pin output = %q", out)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pinBody["pinned"] != true || f.pinBody["current_pinned_count"] != float64(2) {
		t.Fatalf("pin body = %v", f.pinBody)
	}
}

func TestPin_LimitReachedKeepsCredential(t *testing.T) {
	f, srv, creds := newFixture(t)
	f.pinCode = http.StatusUnprocessableEntity
	if _, err := execute(t, srv, creds, "", "login", "--email", "ann@example.org", "--password", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err := execute(t, srv, creds, "", "pin", "posts", "p1", "--current", "1")
	if err == nil || !strings.Contains(err.Error(), "unpin one first") {
		t.Fatalf("err = %v", err)
	}
	if raw, _ := os.ReadFile(creds); !strings.Contains(string(raw), "tok-1") {
		t.Fatal("a rejected pin must not clear the credential")
	}
}

func TestPin_RequiresSignIn(t *testing.T) {
	_, srv, creds := newFixture(t)

	_, err := execute(t, srv, creds, "", "pin", "posts", "p1")
	if err == nil || !strings.Contains(err.Error(), domain.ErrUnauthenticated.Error()) {
		t.Fatalf("err = %v", err)
	}
}

func TestEmbed(t *testing.T) {
	_, srv, creds := newFixture(t)

	out, err := execute(t, srv, creds, "", "embed", "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if !strings.Contains(out, "https://www.youtube.com/embed/abc123?autoplay=1") {
		t.Fatalf("embed output = %q", out)
	}

	if _, err := execute(t, srv, creds, "", "embed", "https://www.youtube.com/@harvest"); err == nil {
		t.Fatal("expected an error for a non-embeddable URL")
	}
}

func TestPreview_FromStdin(t *testing.T) {
	_, srv, creds := newFixture(t)

	out, err := execute(t, srv, creds, "<p>Hello <script>x()</script>church family</p>", "preview", "--limit", "5")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if strings.Contains(out, "x()") {
		t.Fatalf("script leaked into preview: %q", out)
	}
	if !strings.Contains(out, "Hello…") || !strings.Contains(out, "(more)") {
		t.Fatalf("preview output = %q", out)
	}
}

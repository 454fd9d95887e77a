package client

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/smnsjas/go-pve/pveapi/auth"
)

const (
	testUsername = "root"
	testPassword = "testpass"
	testTicket   = "PVE:root@pam:4EEC61E2::c2lnbmF0dXJl"
	testCSRF     = "4EEC61E2:lwk7od06fa1+DcPUwBTXCcndyAY"
)

// mockClock implements Clock with manual time control.
type mockClock struct {
	mu      sync.Mutex
	current time.Time
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// mockServer is a minimal Proxmox VE API stand-in.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	logins   int
	requests []*http.Request
	forms    []url.Values

	rejectLogin bool
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{}
	m.Server = httptest.NewTLSServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	m.mu.Lock()
	m.requests = append(m.requests, r.Clone(r.Context()))
	m.forms = append(m.forms, r.PostForm)
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api2/json/access/ticket":
		m.mu.Lock()
		m.logins++
		m.mu.Unlock()
		if m.rejectLogin || r.PostForm.Get("password") != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"CSRFPreventionToken":"` + testCSRF + `","ticket":"` + testTicket + `","username":"root@pam"}}`))
	case "/api2/json/nodes":
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"node":"office","type":"node","status":"online"}]}`))
	case "/api2/json/nodes/office/qemu":
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet && r.Header.Get(auth.HeaderCSRF) == "" && r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":"UPID:office:0001:qmcreate:100:root@pam:"}`))
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func authorized(r *http.Request) bool {
	if r.Header.Get("Authorization") == "PVEAPIToken=root@pam!ci=secret-uuid" {
		return true
	}
	cookie, err := r.Cookie(auth.CookieTicket)
	return err == nil && cookie.Value == testTicket
}

func (m *mockServer) hostPort(t *testing.T) (string, string) {
	t.Helper()
	u, err := url.Parse(m.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host: %v", err)
	}
	return host, port
}

func (m *mockServer) passwordInput(t *testing.T, password string) auth.PasswordInput {
	host, port := m.hostPort(t)
	return auth.PasswordInput{Hostname: host, Port: port, Username: testUsername, Password: password}
}

func (m *mockServer) tokenInput(t *testing.T) auth.TokenInput {
	host, port := m.hostPort(t)
	return auth.TokenInput{Hostname: host, Port: port, Username: testUsername, TokenName: "ci", TokenValue: "secret-uuid"}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InsecureSkipVerify = true
	return cfg
}

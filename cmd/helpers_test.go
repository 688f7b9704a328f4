package cmd

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/gr/internal/config"
	"github.com/joescharf/gr/internal/gerrit"
	"github.com/joescharf/gr/internal/output"
)

// testEnv sets up isolated config dir, viper, and output for testing.
func testEnv(t *testing.T) (string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	origFunc := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = origFunc })

	viper.Reset()
	config.SetDefaults(viper.GetViper())

	out := &bytes.Buffer{}
	ui = &output.UI{Out: out, ErrOut: &bytes.Buffer{}}

	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	return dir, out
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeReviewServer is an httptest server answering from a "METHOD /path" route table.
type fakeReviewServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	srv      *httptest.Server
}

func newFakeReviewServer(t *testing.T, routes map[string]http.HandlerFunc) *fakeReviewServer {
	t.Helper()
	f := &fakeReviewServer{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		f.mu.Unlock()

		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.Error(w, "Not found: "+r.URL.Path, http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// paths returns "METHOD /path" for every request received.
func (f *fakeReviewServer) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (f *fakeReviewServer) count(method, path string) int {
	n := 0
	for _, p := range f.paths() {
		if p == method+" "+path {
			n++
		}
	}
	return n
}

func reply(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, gerrit.MagicPrefix+"\n"+payload)
	}
}

func fail(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, body, status)
	}
}

// fakeGit records every git operation instead of running it.
type fakeGit struct {
	host   string
	branch string
	calls  []string
	fail   map[string]error
}

func (g *fakeGit) record(call string) error {
	g.calls = append(g.calls, call)
	return g.fail[call]
}

func (g *fakeGit) RemoteURL() (string, error) {
	if g.host == "" {
		return "", errors.New("no origin remote")
	}
	return "ssh://" + g.host + ":29418/core", nil
}

func (g *fakeGit) Hostname() (string, error) {
	if g.host == "" {
		return "", errors.New("no origin remote")
	}
	return g.host, nil
}

func (g *fakeGit) CurrentBranch() (string, error) {
	return g.branch, g.record("branch --show-current")
}

func (g *fakeGit) Checkout(branch string) error {
	return g.record("checkout " + branch)
}

func (g *fakeGit) DeleteBranch(branch string, force bool) error {
	if force {
		return g.record("branch -D " + branch)
	}
	return g.record("branch -d " + branch)
}

func (g *fakeGit) Push(remote, refspec string) (string, error) {
	return "remote: New Changes", g.record("push " + remote + " " + refspec)
}

func (g *fakeGit) RunShell(command string) (string, error) {
	return "", g.record("sh " + command)
}

// testSession wires a session against a fake review server and fake git.
func testSession(t *testing.T, routes map[string]http.HandlerFunc) (*session, *fakeReviewServer, *fakeGit, *bytes.Buffer) {
	t.Helper()
	_, out := testEnv(t)

	f := newFakeReviewServer(t, routes)
	g := &fakeGit{host: "review.example.com", fail: map[string]error{}}
	cfg := &config.Config{
		Auth:    config.Auth{User: "alice", Password: "pw"},
		Theme:   config.DefaultTheme,
		BGColor: config.DefaultBGColor,
		BaseURL: f.srv.URL + "/a",
	}
	s, err := newSession(cfg, ui, g)
	require.NoError(t, err)
	return s, f, g, out
}

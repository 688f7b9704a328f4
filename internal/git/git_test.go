package git

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a git repo in dir with a user config so commits work on CI.
func initTestRepo(t *testing.T, dir string) {
	t.Helper()
	cmds := [][]string{
		{"git", "-C", dir, "init", "-b", "main"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
		{"git", "-C", dir, "commit", "--allow-empty", "-m", "init"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
}

type recordingLogger struct{ lines []string }

func (l *recordingLogger) VerboseLog(format string, a ...any) {
	l.lines = append(l.lines, format)
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"ssh://alice@review.example.com:29418/platform/core", "review.example.com"},
		{"https://review.example.com/platform/core", "review.example.com"},
		{"https://review.example.com:8443/a/core.git", "review.example.com"},
		{"git@review.example.com:platform/core.git", "review.example.com"},
		{"review.example.com:core", "review.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			got, err := ExtractHost(tt.remote)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractHost_Invalid(t *testing.T) {
	for _, remote := range []string{"not-a-url", "/local/path/repo", "file:///tmp/repo"} {
		_, err := ExtractHost(remote)
		assert.Error(t, err, remote)
	}
}

func TestCmdError_Message(t *testing.T) {
	err := &CmdError{Args: []string{"git", "checkout", "nope"}, ExitCode: 1, Stderr: "error: pathspec"}
	assert.Equal(t, "[git checkout nope] exited with 1 code\nerror: pathspec", err.Error())
}

func TestRealClient_RemoteAndBranch(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	require.NoError(t, exec.Command("git", "-C", dir, "remote", "add", "origin", "ssh://me@review.example.com:29418/core").Run())

	log := &recordingLogger{}
	c := &RealClient{Dir: dir, Logger: log}

	host, err := c.Hostname()
	require.NoError(t, err)
	assert.Equal(t, "review.example.com", host)

	branch, err := c.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
	assert.NotEmpty(t, log.lines)
}

func TestRealClient_NoRemote(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)

	c := &RealClient{Dir: dir}
	_, err := c.RemoteURL()
	require.Error(t, err)

	var cmdErr *CmdError
	require.True(t, errors.As(err, &cmdErr))
	assert.NotZero(t, cmdErr.ExitCode)
	assert.Equal(t, []string{"git", "remote", "get-url", "origin"}, cmdErr.Args)
}

func TestRealClient_CheckoutAndDeleteBranch(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	require.NoError(t, exec.Command("git", "-C", dir, "checkout", "-b", "feature-x").Run())

	c := &RealClient{Dir: dir}
	require.NoError(t, c.Checkout("main"))
	require.NoError(t, c.DeleteBranch("feature-x", true))

	out, err := c.Run("git", "branch", "--list", "feature-x")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRealClient_RunShell(t *testing.T) {
	c := &RealClient{Dir: t.TempDir()}

	out, err := c.RunShell("echo hello && echo world")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", out)

	_, err = c.RunShell("echo boom >&2; exit 3")
	var cmdErr *CmdError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "boom", cmdErr.Stderr)
}

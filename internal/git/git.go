package git

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
)

// Logger receives a line for every command executed.
type Logger interface {
	VerboseLog(format string, a ...any)
}

// Client defines the git operations gr needs in the current repository.
type Client interface {
	RemoteURL() (string, error)
	Hostname() (string, error)
	CurrentBranch() (string, error)
	Checkout(branch string) error
	DeleteBranch(branch string, force bool) error
	Push(remote, refspec string) (string, error)
	RunShell(command string) (string, error)
}

// CmdError is returned when an external command exits non-zero.
type CmdError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CmdError) Error() string {
	msg := fmt.Sprintf("%v exited with %d code", e.Args, e.ExitCode)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

// RealClient implements Client using real git commands in Dir.
type RealClient struct {
	Dir    string
	Logger Logger

	remote string
}

// NewClient returns a RealClient rooted at the process working directory.
// $PWD is preferred over os.Getwd so symlinked checkouts behave like the shell.
func NewClient(logger Logger) *RealClient {
	dir := os.Getenv("PWD")
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return &RealClient{Dir: dir, Logger: logger}
}

// Run executes name with args in c.Dir and returns trimmed stdout.
func (c *RealClient) Run(name string, args ...string) (string, error) {
	out, _, err := c.run(append([]string{name}, args...), exec.Command(name, args...))
	return out, err
}

// RunShell executes command through sh and returns trimmed stdout.
func (c *RealClient) RunShell(command string) (string, error) {
	out, _, err := c.run([]string{command}, exec.Command("sh", "-c", command))
	return out, err
}

func (c *RealClient) run(display []string, cmd *exec.Cmd) (string, string, error) {
	if c.Logger != nil {
		c.Logger.VerboseLog("exec: %s", strings.Join(display, " "))
	}
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", "", &CmdError{Args: display, ExitCode: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return "", "", fmt.Errorf("%s: %w", strings.Join(display, " "), err)
	}
	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), nil
}

func (c *RealClient) git(args ...string) (string, error) {
	return c.Run("git", args...)
}

// RemoteURL returns the origin URL, resolved once per client.
func (c *RealClient) RemoteURL() (string, error) {
	if c.remote != "" {
		return c.remote, nil
	}
	out, err := c.git("remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	c.remote = out
	return out, nil
}

func (c *RealClient) Hostname() (string, error) {
	remote, err := c.RemoteURL()
	if err != nil {
		return "", err
	}
	return ExtractHost(remote)
}

func (c *RealClient) CurrentBranch() (string, error) {
	return c.git("branch", "--show-current")
}

func (c *RealClient) Checkout(branch string) error {
	_, err := c.git("checkout", branch)
	return err
}

func (c *RealClient) DeleteBranch(branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := c.git("branch", flag, branch)
	return err
}

// Push pushes refspec to remote. The remote's progress and messages (where a review
// server reports the URL of a new change) arrive on stderr and are returned too.
func (c *RealClient) Push(remote, refspec string) (string, error) {
	args := []string{"git", "push", remote, refspec}
	stdout, stderr, err := c.run(args, exec.Command(args[0], args[1:]...))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join([]string{stderr, stdout}, "\n")), nil
}

// ExtractHost returns the host of a remote URL. Both URL forms
// (ssh://user@host:29418/repo, https://host/repo) and scp-like
// forms (user@host:repo) are accepted.
func ExtractHost(remoteURL string) (string, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	if strings.Contains(remoteURL, "://") {
		u, err := url.Parse(remoteURL)
		if err != nil {
			return "", fmt.Errorf("cannot parse remote %q: %w", remoteURL, err)
		}
		if u.Hostname() == "" {
			return "", fmt.Errorf("remote %q has no host", remoteURL)
		}
		return u.Hostname(), nil
	}

	// scp-like: [user@]host:path
	hostPart, _, ok := strings.Cut(remoteURL, ":")
	if !ok || hostPart == "" || strings.Contains(hostPart, "/") {
		return "", fmt.Errorf("cannot parse host from remote: %s", remoteURL)
	}
	if _, host, found := strings.Cut(hostPart, "@"); found {
		hostPart = host
	}
	if hostPart == "" {
		return "", fmt.Errorf("cannot parse host from remote: %s", remoteURL)
	}
	return hostPart, nil
}

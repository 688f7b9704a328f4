package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakePrompter struct {
	answers []string
	asked   []string
	err     error
}

func (f *fakePrompter) next(label string) (string, error) {
	f.asked = append(f.asked, label)
	if f.err != nil {
		return "", f.err
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, nil
}

func (f *fakePrompter) Prompt(label string) (string, error)       { return f.next(label) }
func (f *fakePrompter) PromptSecret(label string) (string, error) { return f.next(label) }

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := "auth:\n  user: alice\n  password: s3cret\ntheme: monokai\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p := &fakePrompter{}
	cfg, err := Load(newViper(), path, p, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Auth.User)
	assert.Equal(t, "s3cret", cfg.Auth.Password)
	assert.Equal(t, "monokai", cfg.Theme)
	assert.Equal(t, DefaultBGColor, cfg.BGColor)
	assert.Empty(t, p.asked, "should not prompt when the file exists")
}

func TestLoad_BootstrapsMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", FileName)

	p := &fakePrompter{answers: []string{"bob", "hunter2"}}
	out := &bytes.Buffer{}
	cfg, err := Load(newViper(), path, p, out)
	require.NoError(t, err)

	assert.Equal(t, Auth{User: "bob", Password: "hunter2"}, cfg.Auth)
	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.Equal(t, []string{"user> ", "pswd> "}, p.asked)
	assert.Contains(t, out.String(), "HTTP credentials")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var written fileConfig
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, "bob", written.Auth.User)
	assert.Equal(t, "hunter2", written.Auth.Password)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_EnvUserSkipsBootstrap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	v := newViper()
	v.Set("auth.user", "ci")
	v.Set("auth.password", "token")

	p := &fakePrompter{}
	cfg, err := Load(v, path, p, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "ci", cfg.Auth.User)
	assert.Empty(t, p.asked)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file should be written")
}

func TestLoad_PromptError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	p := &fakePrompter{err: errors.New("eof")}
	_, err := Load(newViper(), path, p, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read user")
}

func TestBootstrap_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the config directory should be makes MkdirAll fail.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	p := &fakePrompter{answers: []string{"u", "p"}}
	_, err := Bootstrap(filepath.Join(blocker, FileName), p, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create config directory")
}

func TestBootstrap_NoPrompter(t *testing.T) {
	_, err := Bootstrap(filepath.Join(t.TempDir(), FileName), nil, &bytes.Buffer{})
	assert.Error(t, err)
}

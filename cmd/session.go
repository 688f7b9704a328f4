package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/gr/internal/cache"
	"github.com/joescharf/gr/internal/config"
	"github.com/joescharf/gr/internal/gerrit"
	"github.com/joescharf/gr/internal/git"
	"github.com/joescharf/gr/internal/output"
)

// session bundles everything a command needs for one invocation. It is built once,
// after the config is loaded, and passed explicitly to every run function.
type session struct {
	cfg   *config.Config
	ui    *output.UI
	git   git.Client
	api   *gerrit.Client
	names *cache.NameCache
}

var current *session

// getSession returns the shared session, loading config and resolving the server on
// first call. Commands that do not talk to the server never trigger the bootstrap.
func getSession() (*session, error) {
	if current != nil {
		return current, nil
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(viper.GetViper(), cfgPath, config.NewTermPrompter(os.Stdin, ui.Out), ui.Out)
	if err != nil {
		return nil, err
	}

	gc := git.NewClient(ui)
	s, err := newSession(cfg, ui, gc)
	if err != nil {
		return nil, err
	}
	current = s
	return current, nil
}

// newSession wires the gateway and name cache for cfg. The API root is cfg.BaseURL
// when set, otherwise derived from the origin remote's host.
func newSession(cfg *config.Config, u *output.UI, gc git.Client) (*session, error) {
	u.Theme = cfg.Theme
	u.BGColor = cfg.BGColor

	baseURL := cfg.BaseURL
	if baseURL == "" {
		host, err := gc.Hostname()
		if err != nil {
			return nil, fmt.Errorf("resolve review server from origin remote: %w", err)
		}
		baseURL = gerrit.BaseURLForHost(host)
	}
	u.VerboseLog("Review server: %s", baseURL)

	api := gerrit.NewClient(baseURL, cfg.Auth, gerrit.WithLogger(u))
	return &session{
		cfg:   cfg,
		ui:    u,
		git:   gc,
		api:   api,
		names: cache.NewNameCache(api, cache.DefaultCapacity),
	}, nil
}

// Package cli wires the console commands: login, record CRUD, and the
// interactive dashboard. Every command builds the same app core (config,
// session, API client, cache, mutator) and differs only in what it drives.
package cli

import (
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pointzapp/bhakti-console/internal/api"
	"github.com/pointzapp/bhakti-console/internal/config"
	"github.com/pointzapp/bhakti-console/internal/logger"
	"github.com/pointzapp/bhakti-console/internal/media"
	"github.com/pointzapp/bhakti-console/internal/mutate"
	"github.com/pointzapp/bhakti-console/internal/query"
	"github.com/pointzapp/bhakti-console/internal/session"
	"github.com/pointzapp/bhakti-console/internal/version"
)

var (
	flagConfigPath string
	flagAPIBaseURL string
	flagTimeout    time.Duration
)

// app bundles the pieces every command needs.
type app struct {
	cfg      config.Config
	session  *session.Session
	client   *api.Client
	cache    *query.Cache
	mutator  *mutate.Mutator
	resolver *media.URLResolver
	tokens   *tokenStore
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "Admin console for the Mantra and Story catalog",
		Version:       version.GetInfo(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to console.toml")
	root.PersistentFlags().StringVar(&flagAPIBaseURL, "api-url", "", "API base URL (overrides config)")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout (overrides config)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newMantraCmd(),
		newStoryCmd(),
		newDashboardCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the console.
func Execute() error {
	return newRootCmd().Execute()
}

// newApp loads config, restores the saved session, and builds the client
// stack. The stored token is dropped from disk when the server rejects it.
func newApp() (*app, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if strings.TrimSpace(flagAPIBaseURL) != "" {
		cfg.API.BaseURL = flagAPIBaseURL
	}
	timeout := cfg.API.Timeout()
	if flagTimeout > 0 {
		timeout = flagTimeout
	}

	tokens, err := newTokenStore(cfg.Auth.TokenFile)
	if err != nil {
		return nil, err
	}

	sess := session.New()
	if access, refresh := tokens.load(); access != "" {
		sess.SetTokens(access, refresh)
	}
	sess.OnLogout(func() {
		tokens.clear()
	})

	httpClient := &http.Client{Timeout: timeout}
	client := api.New(cfg.API.BaseURL, httpClient, sess, logger.L)
	cache := query.NewCache(query.WithStaleAfter(cfg.Query.StaleAfter()))

	return &app{
		cfg:      cfg,
		session:  sess,
		client:   client,
		cache:    cache,
		mutator:  mutate.New(client, cache, nil, logger.L),
		resolver: media.NewURLResolver(cfg.Media.PublicBaseURL),
		tokens:   tokens,
	}, nil
}

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pointzapp/bhakti-console/internal/logger"
	"github.com/pointzapp/bhakti-console/internal/tui"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if !a.session.Authenticated() {
				return fmt.Errorf("not logged in; run `console login` first")
			}
			if a.session.ExpiresSoon(5 * time.Minute) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: session token expires soon, consider logging in again")
			}

			// The dashboard owns the terminal; route logs to a file when one
			// is configured, otherwise drop below error noise entirely.
			if a.cfg.Log.File != "" {
				f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logger.InitWriter(f, a.cfg.Log.Level, a.cfg.Log.Format)
			} else {
				logger.InitWriter(os.Stderr, "error", a.cfg.Log.Format)
			}

			return tui.Run(tui.Deps{
				Client:    a.client,
				Cache:     a.cache,
				Session:   a.session,
				Logger:    logger.L,
				PageLimit: a.cfg.Query.PageLimit,
			})
		},
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/jobs"
	"github.com/pdiddy/research-funnel/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the research funnel over HTTP",
	Long: `Serve starts the HTTP API. With --async, POST /research returns a task id
at once and the run continues in the background; poll GET /research/:id for
its state. Job state is kept in a SQLite file (server.jobs_db).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := loadConfig()
		f, err := newFunnel(ctx, cfg)
		if err != nil {
			return err
		}

		var store *jobs.Store
		if cfg.Server.Async {
			store, err = jobs.Open(cfg.Server.JobsDB, f.Research, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing job store", zap.Error(err))
				}
			}()
		}

		gin.SetMode(gin.ReleaseMode)
		srv := server.New(f, jobStore(store), cfg, logger)
		return srv.Run(ctx)
	},
}

// jobStore keeps a nil *jobs.Store from becoming a non-nil interface.
func jobStore(s *jobs.Store) server.JobStore {
	if s == nil {
		return nil
	}
	return s
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Bool("async", false, "queue research requests as background jobs")
	serveCmd.Flags().String("jobs-db", "research-funnel-jobs.db", "SQLite file for background jobs")
	_ = viper.BindPFlag(keyServerAddr, serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(keyServerAsync, serveCmd.Flags().Lookup("async"))
	_ = viper.BindPFlag(keyServerJobsDB, serveCmd.Flags().Lookup("jobs-db"))

	rootCmd.AddCommand(serveCmd)
}

// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the car
// rental web server. Commands are organized using the cobra library.
// The root command starts the web server itself while the "db"
// sub-command can be used for the database initialization actions.
//
//	./rentalweb [-c /path/of/config.yaml]           # start web server
//	./rentalweb db init-dev [-c /path/of/config.yaml]
//	./rentalweb db init-prod [-c /path/of/config.yaml]
package command

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/config"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/routes"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "rentalweb",
	Short: "Car rental availability web server",
	Long: `Car rental availability web server which books cars for
non-overlapping periods, returns and cancels rentals, and answers the
availability queries of a car catalog.
Users are authenticated by JWT bearer tokens. Rentals are kept in a
PostgreSQL database and the rental history of each user is either kept
in the same database or projected to a remote user service.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

// loadConfig loads the configuration file and installs the default
// logger based on its logging settings.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	if err = c.Logging.Setup(os.Stderr); err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}
	return c, nil
}

// shutdownTimeout bounds the draining of in-flight requests after an
// interrupt or termination signal.
const shutdownTimeout = 10 * time.Second

func startWebServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		cmd.Context(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info(ctx, "configuration is loaded",
		slog.String("path", cfgPath),
		slog.Any("database", c.Database),
		slog.String("history", c.Usecases.Rentals.History),
	)
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	e := c.Gin.NewEngine()
	closer, err := routes.Register(ctx, e, p, routes.PostgresRepos(), c)
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	defer func() {
		if err := closer(); err != nil {
			log.Warn(ctx, "closing rate limiters", log.Err("err", err))
		}
	}()
	srv := &http.Server{
		Addr:              c.Gin.Address,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", slog.String("address", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()
	select {
	case err := <-serveErr:
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}
	log.Info(context.Background(), "shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}

// Command shelfctl runs database maintenance and catalog queries without the
// HTTP server.
package main

import (
	"fmt"
	"os"

	"campus_shelf/app"
	"campus_shelf/config"
	"campus_shelf/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	configDir string
	verbose   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shelfctl",
	Short: "Campus Shelf maintenance CLI",
	Long: `shelfctl talks to the same Postgres database as the API server.

Configuration is read from the embedded defaults, then config.yaml in
--config, then SHELF_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		var err error
		cfg, err = config.Load(configDir)
		if err != nil {
			return err
		}
		lc := cfg.Env.Log
		if verbose {
			lc.Level = "debug"
		}
		logger, err = app.NewLogger(lc)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openDB 连接数据库，调用方负责关闭
func openDB() (*gorm.DB, func(), error) {
	conn, err := db.Connect(cfg.Postgres, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return conn, closeFn, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(migrateCmd, seedCmd, browseCmd, requestsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"simbooking/internal/config"
	"simbooking/internal/db"
)

var (
	verbose bool
	log     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "Maintenance commands for the booking backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			log = l
		}
		return nil
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(maestriCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads the server configuration and opens the database it points to.
func connect(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (check DATABASE_URL)", err)
	}
	return cfg, conn, nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"simbooking/internal/repository"
	"simbooking/internal/service"
)

func createAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account for the panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or ADMIN_PASSWORD) are required")
			}

			cfg, conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := service.NewAdminAuthService(repository.NewAdminAuthRepository(conn), cfg.JWTSecret, log)
			if err := svc.CreateAdmin(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (min 8 characters)")
	return cmd
}

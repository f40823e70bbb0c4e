package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"simbooking/internal/repository"
	"simbooking/internal/service"
)

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Write every booking as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				if out == "." {
					out = service.ExportFilename(time.Now())
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			svc := service.NewExportService(repository.NewBookingRepository(conn, cfg.Timezone), log)
			if err := svc.WriteCSV(cmd.Context(), w); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", `Output file ("." for the default dated name, empty for stdout)`)
	return cmd
}

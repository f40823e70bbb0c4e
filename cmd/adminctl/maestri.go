package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"simbooking/internal/entities"
	"simbooking/internal/repository"
	"simbooking/internal/service"
)

func maestriCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maestri",
		Short: "Instructor payment ledger",
	}
	cmd.AddCommand(maestriSyncCmd())
	cmd.AddCommand(maestriListCmd())
	return cmd
}

func maestroService(cmd *cobra.Command) (*service.MaestroService, func() error, error) {
	cfg, conn, err := connect(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewMaestroRepository(conn, cfg.Timezone)
	return service.NewMaestroService(repo, cfg.MaestroHourlyRate, cfg.Timezone, log), conn.Close, nil
}

func maestriSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Create payment rows for new lessons and drop rows of cancelled ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := maestroService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := svc.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, removed %d\n", res.Inserted, res.Removed)
			return nil
		},
	}
}

func maestriListCmd() *cobra.Command {
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show per-instructor totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := maestroService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			overview, err := svc.Overview(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(overview)
			}
			return printOverview(cmd.OutOrStdout(), overview)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Count payments made from this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Count payments made up to this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func printOverview(out io.Writer, overview *entities.MaestriOverview) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tLESSONS\tPAID\tOWED\tPENDING")
	for _, m := range overview.Maestri {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			m.MaestroEmail, m.LessonsCount, m.PaidLessonsCount, m.TotalOwed.StringFixed(2), m.PendingAmount.StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t\toutstanding %s\tpaid %s\n", overview.TotalOwed.StringFixed(2), overview.TotalPaid.StringFixed(2))
	return w.Flush()
}

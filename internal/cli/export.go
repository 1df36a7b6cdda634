package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/handler"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

// ExportCmd writes reservations as CSV, the same columns as the admin
// export endpoint.
func ExportCmd(env *Env) *cobra.Command {
	var (
		from, to, status, out string
		unitID                uint64
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reservations as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := repository.ReservationFilter{Status: status, UnitID: unitID}
			var err error
			if from != "" {
				if f.From, err = booking.ParseDate(from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}
			if to != "" {
				if f.To, err = booking.ParseDate(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			db, err := env.OpenDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := repository.NewReservationRepo(db).List(cmd.Context(), f)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := handler.WriteCSV(w, list); err != nil {
				return err
			}
			cmd.PrintErrf("%d reservations exported\n", len(list))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "only this status")
	cmd.Flags().Uint64Var(&unitID, "unit", 0, "only this unit")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

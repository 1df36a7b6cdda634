package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

// DefaultUnits are the cabins of a fresh install.
var DefaultUnits = []model.Unit{
	{
		Name: "Cabana do Lago", Number: 1, Capacity: 4, AllowsChildren: true,
		Description:      "Two bedrooms facing the lake, wood stove.",
		WeekdayRateCents: 45000, WeekendRateCents: 60000,
		IncludedAdults: 2, ExtraAdultFeeCents: 8000,
	},
	{
		Name: "Cabana da Mata", Number: 2, Capacity: 4, AllowsChildren: true,
		Description:      "Among the trees, deck with hammock.",
		WeekdayRateCents: 40000, WeekendRateCents: 55000,
		IncludedAdults: 2, ExtraAdultFeeCents: 8000,
	},
	{
		Name: "Chalé Romântico", Number: 3, Capacity: 2,
		Description:      "Adults only, hot tub.",
		WeekdayRateCents: 52000, WeekendRateCents: 68000,
	},
}

// SeedCmd inserts DefaultUnits.  Units whose number already exists are
// left alone, so running it twice is harmless.
func SeedCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default cabins",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := env.OpenDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			units := repository.NewUnitRepo(db)
			for _, u := range DefaultUnits {
				err := units.Create(cmd.Context(), &u)
				switch {
				case errors.Is(err, repository.ErrConflict):
					cmd.Printf("unit %d already exists, skipped\n", u.Number)
				case err != nil:
					return fmt.Errorf("seed unit %d: %w", u.Number, err)
				default:
					cmd.Printf("unit %d %q created (id %d)\n", u.Number, u.Name, u.ID)
				}
			}
			return nil
		},
	}
}

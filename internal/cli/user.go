package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/repository"
	"github.com/iliyamo/cabin-booking/internal/utils"
)

// UserCmd groups the staff account commands.
func UserCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(userCreateCmd(env), userActiveCmd(env, "disable", false), userActiveCmd(env, "enable", true))
	return cmd
}

func userCreateCmd(env *Env) *cobra.Command {
	var fullName, role, password string
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != model.RoleAdmin && role != model.RoleStaff {
				return fmt.Errorf("--role must be %s or %s", model.RoleAdmin, model.RoleStaff)
			}
			if password == "" {
				password = os.Getenv("CABINCTL_PASSWORD")
			}
			if err := utils.CheckPassword(password); err != nil {
				return err
			}
			if strings.TrimSpace(fullName) == "" {
				fullName = args[0]
			}

			db, err := env.OpenDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := repository.NewUserRepo(db).Create(cmd.Context(), args[0], password, fullName, role, env.Config.BcryptCost)
			if err != nil {
				return err
			}
			cmd.Printf("user %s created (id %d, role %s)\n", strings.ToLower(args[0]), id, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", model.RoleStaff, "admin or staff")
	cmd.Flags().StringVar(&password, "password", "", "password (default $CABINCTL_PASSWORD)")
	return cmd
}

func userActiveCmd(env *Env, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := env.OpenDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.NewUserRepo(db).SetActive(cmd.Context(), args[0], active); err != nil {
				return fmt.Errorf("%s %s: %w", use, args[0], err)
			}
			cmd.Printf("user %s %sd\n", args[0], use)
			return nil
		},
	}
}

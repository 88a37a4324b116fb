package main

import (
	"document-archive/internal/auth"
	"document-archive/internal/db"
	"document-archive/internal/user"
	"fmt"

	"github.com/spf13/cobra"
)

// Login lives in the identity provider; this mints a bearer token for an
// existing user, e.g. for scripts and local testing.
func getTokenCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Prints a bearer token for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := db.Connect(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			u, err := user.NewService(user.NewRepository(gdb)).GetUserByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			token, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL).Generate(u.ID, u.Role, u.TokenVersion)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage operator accounts",
	}

	var username, password string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create an admin if the username does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = a.cfg.Auth.BootstrapUsername
			}
			if password == "" {
				password = a.cfg.Auth.BootstrapPassword
			}
			if username == "" || password == "" {
				return fmt.Errorf("--username and a password (--password or ADMIN_PASSWORD) are required")
			}

			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			created, err := svc.EnsureAdmin(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %q\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", username)
			}
			return nil
		},
	}
	seed.Flags().StringVar(&username, "username", "", "admin username (default ADMIN_USERNAME)")
	seed.Flags().StringVar(&password, "password", "", "admin password (default ADMIN_PASSWORD)")

	cmd.AddCommand(seed)
	return cmd
}

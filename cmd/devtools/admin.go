package main

import (
	"errors"
	"fmt"

	"github.com/aman-churiwal/devtools-profiler/internal/repository"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin users of the profiler API",
}

var adminCreateUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an admin user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		auth := service.NewAuthService(repository.NewAuthRepository(db), cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)

		user, err := auth.Register(cmd.Context(), adminEmail, adminPassword, adminName)
		if errors.Is(err, service.ErrUserExists) {
			return fmt.Errorf("an admin with email %s already exists", adminEmail)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	adminCreateUserCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	adminCreateUserCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	adminCreateUserCmd.Flags().StringVar(&adminName, "name", "", "display name")
	adminCreateUserCmd.MarkFlagRequired("email")
	adminCreateUserCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateUserCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alertify/go-alertify-server/services"
)

var (
	userEmail    string
	userPassword string
	senderEmail  string
	appPassword  string
)

func init() {
	useraddCmd.Flags().StringVar(&userEmail, "email", "", "account email (required)")
	useraddCmd.Flags().StringVar(&userPassword, "password", "", "account password (required)")
	useraddCmd.Flags().StringVar(&senderEmail, "sender", "", "outbound sender address (optional)")
	useraddCmd.Flags().StringVar(&appPassword, "app-password", "", "outbound sender app password (optional)")
	useraddCmd.MarkFlagRequired("email")
	useraddCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(useraddCmd)
}

// useraddCmd seeds an account, optionally with sender credentials, for local testing
var useraddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Create a user in the configured storage backend",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStorage()
		defer store.Close()

		userService := services.NewUserService(store, nil)
		ctx := context.Background()

		user, err := userService.Register(ctx, userEmail, userPassword)
		check(err)

		if senderEmail != "" && appPassword != "" {
			check(userService.UpdateEmailCredentials(ctx, user.ID, senderEmail, appPassword))
		}
		fmt.Printf("created user %s (%s)\n", user.Email, user.ID)
	},
}

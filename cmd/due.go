package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var onlyDue bool

func init() {
	dueCmd.Flags().BoolVar(&onlyDue, "due-only", false, "show only reminders that are due now")
	rootCmd.AddCommand(dueCmd)
}

// dueCmd prints the stored reminders and their dispatch state
var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List stored reminders and their dispatch state",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStorage()
		defer store.Close()

		reminders, err := store.ListReminders(context.Background())
		check(err)

		now := time.Now().UTC()
		for _, r := range reminders {
			state := "PENDING"
			if r.IsCompleted {
				state = "COMPLETED"
			} else if dueAt, pErr := r.DueAt(); pErr != nil {
				state = "INVALID TIME"
			} else if !dueAt.After(now) {
				state = "DUE"
			}
			if onlyDue && state != "DUE" {
				continue
			}
			fmt.Printf("%-36s  %-20s  %-12s  user=%s  %q\n", r.ID, r.ReminderTime, state, r.UserID, r.Title)
		}
	},
}

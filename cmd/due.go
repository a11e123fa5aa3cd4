package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show reviews due today, or send reminders for the current hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		send, _ := cmd.Flags().GetBool("notify")
		if userID == "" && !send {
			return fmt.Errorf("either --user or --notify is required")
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := e.wire()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		now := time.Now().In(e.cfg.Location())

		if userID != "" {
			n, err := a.tracker.ReviewsDueAt(cmd.Context(), userID, now)
			if err != nil {
				return err
			}
			questions, err := a.tracker.DueQuestions(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d reviews due, %d questions to study\n", userID, n, len(questions))
		}

		if send {
			sent, err := a.scheduler.RunReminders(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "reminders sent for %02d:00: %d\n", now.Hour(), sent)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dueCmd)
	dueCmd.Flags().String("user", "", "user id to report on")
	dueCmd.Flags().Bool("notify", false, "send reminders to users whose reminder hour is now")
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func pushCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload a user's local books and moods to the cloud store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.remote.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("no user with email %q", email)
			}
			report, err := a.syncer.Push(ctx, user.ID.Hex())
			if err != nil {
				return err
			}
			log.Info("push finished",
				zap.String("user", user.ID.Hex()),
				zap.Int("books", report.BooksPushed),
				zap.Int("moods", report.MoodsPushed),
				zap.Int("failed", report.Failed))
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d books, %d moods (%d failed)\n",
				report.BooksPushed, report.MoodsPushed, report.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.MarkFlagRequired("email")
	return cmd
}

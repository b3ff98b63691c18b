package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}

	cmd.AddCommand(newAdminGrantXPCmd())
	cmd.AddCommand(newAdminRebuildStreakCmd())
	cmd.AddCommand(newAdminSeasonCmd())

	return cmd
}

func newAdminGrantXPCmd() *cobra.Command {
	var amount int
	var reason string

	cmd := &cobra.Command{
		Use:   "grant-xp <player_id>",
		Short: "Grant XP to a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"amount": amount, "reason": reason}
			var result Award

			if err := client.Post(playerPath(args[0], "/xp"), req, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&amount, "amount", 0, "XP to grant (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded with the grant")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newAdminRebuildStreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-streak <player_id>",
		Short: "Recompute a player's streak from the login log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StreakSummary

			if err := client.Post(playerPath(args[0], "/streak/rebuild"), nil, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newAdminSeasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Season commands",
	}

	cmd.AddCommand(newAdminSeasonCreateCmd())
	cmd.AddCommand(newAdminSeasonListCmd())

	return cmd
}

func newAdminSeasonCreateCmd() *cobra.Command {
	var name, starts, ends string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Define a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			startsAt, err := parseSeasonTime(starts)
			if err != nil {
				return fmt.Errorf("invalid --starts: %w", err)
			}
			endsAt, err := parseSeasonTime(ends)
			if err != nil {
				return fmt.Errorf("invalid --ends: %w", err)
			}

			req := map[string]any{
				"name":      name,
				"starts_at": startsAt,
				"ends_at":   endsAt,
			}
			var result Season

			if err := client.Post("/api/v1/admin/seasons", req, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Season name (required)")
	cmd.Flags().StringVar(&starts, "starts", "", "Start date YYYY-MM-DD or RFC 3339 (required)")
	cmd.Flags().StringVar(&ends, "ends", "", "End date YYYY-MM-DD or RFC 3339, exclusive (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("starts")
	_ = cmd.MarkFlagRequired("ends")

	return cmd
}

func newAdminSeasonListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List seasons",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch[Seasons](cmd, "/api/v1/admin/seasons")
		},
	}
}

func playerPath(playerID, suffix string) string {
	return "/api/v1/admin/players/" + url.PathEscape(playerID) + suffix
}

// parseSeasonTime accepts RFC 3339 or a bare date (midnight UTC)
func parseSeasonTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var period, asOf string
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show a leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]string{
				"period": period,
				"as_of":  asOf,
			}
			if limit > 0 {
				params["limit"] = strconv.Itoa(limit)
			}
			var result Leaderboard

			if err := client.GetQuery("/api/v1/leaderboard", params, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "weekly", "Period: daily, weekly, season, all-time")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries (0 for all)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Date (YYYY-MM-DD) or RFC 3339 time to rank at")

	return cmd
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Show the level table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch[Levels](cmd, "/api/v1/levels")
		},
	}
}

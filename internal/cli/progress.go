package cli

import (
	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show level, energy, streak and points",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch[Progression](cmd, "/api/v1/me/progression")
		},
	}
}

func newStreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the daily login streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch[StreakStatus](cmd, "/api/v1/me/streak")
		},
	}
}

func newEnergyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "energy",
		Short: "Energy commands",
	}

	cmd.AddCommand(newEnergySpendCmd())
	cmd.AddCommand(newEnergyRefillCmd())

	return cmd
}

func newEnergySpendCmd() *cobra.Command {
	var amount int

	cmd := &cobra.Command{
		Use:   "spend",
		Short: "Spend energy",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Energy

			if err := client.Post("/api/v1/me/energy/spend", map[string]int{"amount": amount}, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&amount, "amount", 0, "Energy to spend (required)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newEnergyRefillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refill",
		Short: "Refill energy to the maximum",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Energy

			if err := client.Post("/api/v1/me/energy/refill", nil, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Cast one vote, spending energy for XP and points",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayResult

			if err := client.Post("/api/v1/me/plays", nil, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"belltower/internal/ipc"
)

func newAlarmsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "alarms",
		Short: "List the alarms the daemon is scheduling",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Alarms()
				if err != nil {
					return fmt.Errorf("list alarms: %w", err)
				}
				if len(resp.Alarms) == 0 {
					fmt.Fprintf(stdout, "No alarms defined in %s\n", resp.Path)
					return nil
				}
				rows := make([][]string, 0, len(resp.Alarms))
				for _, a := range resp.Alarms {
					rows = append(rows, []string{a.ID, a.Day, a.Time, a.Label, a.Sound})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Day", "Time", "Label", "Sound"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
}

func newTriggersCommand(ctx *commandContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Show trigger history for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Triggers(date)
				if err != nil {
					return fmt.Errorf("list triggers: %w", err)
				}
				if len(resp.Events) == 0 {
					fmt.Fprintf(stdout, "No triggers recorded on %s\n", resp.Date)
					return nil
				}
				rows := make([][]string, 0, len(resp.Events))
				for _, ev := range resp.Events {
					rows = append(rows, []string{
						fmt.Sprintf("%d", ev.ID),
						ev.ScheduledTime,
						ev.Label,
						ev.Sound,
						ev.Backend,
						ev.Outcome,
						ev.Detail,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Time", "Label", "Sound", "Backend", "Outcome", "Detail"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to inspect (YYYY-MM-DD, defaults to today)")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"belltower/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return fmt.Errorf("query status: %w", err)
				}
				colorize := shouldColorize(stdout)
				for _, line := range renderSectionHeader("Belltower Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				kind := statusOK
				message := "running"
				if !status.Running {
					kind = statusWarn
					message = "stopped"
				}
				fmt.Fprintln(stdout, renderStatusLine("Daemon", kind, message, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Backend", statusInfo, status.Backend, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Alarms file", statusInfo, status.AlarmsFile, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Alarms loaded", statusInfo, fmt.Sprintf("%d", status.AlarmCount), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Fired today", statusInfo, fmt.Sprintf("%d", status.FiredToday), colorize))
				if status.HistoryDBPath != "" {
					fmt.Fprintln(stdout, renderStatusLine("History DB", statusInfo, status.HistoryDBPath, colorize))
				}
				fmt.Fprintln(stdout, renderStatusLine("Lock file", statusInfo, status.LockPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the belltower daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return fmt.Errorf("stop daemon: %w", err)
				}
				if resp.Stopped {
					fmt.Fprintln(stdout, "Daemon stopped")
				} else {
					fmt.Fprintln(stdout, "Stop request sent")
				}
				return nil
			})
		},
	}
}

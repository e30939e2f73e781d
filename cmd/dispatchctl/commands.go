package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func OrderCmd(conn *connection) *cobra.Command {
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Manage orders",
	}

	var vip bool
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), conn.timeout)
			defer cancel()

			client, err := conn.client(ctx)
			if err != nil {
				return err
			}

			priority := "normal"
			if vip {
				priority = "high"
			}
			id, err := client.SubmitOrder(ctx, priority)
			if err != nil {
				return fmt.Errorf("failed to submit order: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s submitted.\n", id)
			return nil
		},
	}
	submitCmd.Flags().BoolVar(&vip, "vip", false, "submit a high priority order")

	orderCmd.AddCommand(submitCmd)
	return orderCmd
}

func BotCmd(conn *connection) *cobra.Command {
	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Manage the bot pool",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bot to the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), conn.timeout)
			defer cancel()

			client, err := conn.client(ctx)
			if err != nil {
				return err
			}
			id, err := client.AddBot(ctx)
			if err != nil {
				return fmt.Errorf("failed to add bot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bot %d added.\n", id)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the newest bot from the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), conn.timeout)
			defer cancel()

			client, err := conn.client(ctx)
			if err != nil {
				return err
			}
			id, err := client.RemoveBot(ctx)
			if err != nil {
				return fmt.Errorf("failed to remove bot: %w", err)
			}
			if id == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bot to remove.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bot %d removed.\n", id)
			return nil
		},
	}

	botCmd.AddCommand(addCmd)
	botCmd.AddCommand(removeCmd)
	return botCmd
}

func StatusCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending, processing and completed orders and the bot pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), conn.timeout)
			defer cancel()

			client, err := conn.client(ctx)
			if err != nil {
				return err
			}
			snap, err := client.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch status: %w", err)
			}

			data, err := json.MarshalIndent(snap.AsMap(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

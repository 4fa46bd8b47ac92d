// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "Manage recipients of the daily update",
	Long: `Subscribers manages the chats that receive the daily digest sent by
watch. Chat IDs are integers; group chats are negative.`,
}

var subscribersAddCmd = &cobra.Command{
	Use:   "add <chat-id>",
	Short: "Subscribe a chat to the daily update",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		s, err := openConfiguredStore()
		if err != nil {
			return err
		}
		defer s.Close()

		added, err := s.AddSubscriber(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !added {
			fmt.Printf("chat %d is already subscribed\n", id)
			return nil
		}
		fmt.Printf("subscribed chat %d\n", id)
		return nil
	},
}

var subscribersRemoveCmd = &cobra.Command{
	Use:   "remove <chat-id>",
	Short: "Unsubscribe a chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		s, err := openConfiguredStore()
		if err != nil {
			return err
		}
		defer s.Close()

		removed, err := s.RemoveSubscriber(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Printf("chat %d was not subscribed\n", id)
			return nil
		}
		fmt.Printf("unsubscribed chat %d\n", id)
		return nil
	},
}

var subscribersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed chats",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openConfiguredStore()
		if err != nil {
			return err
		}
		defer s.Close()

		subs, err := s.Subscribers(cmd.Context())
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Println("no subscribers")
			return nil
		}
		t := newTable("CHAT", "SINCE")
		for _, sub := range subs {
			t.add(strconv.FormatInt(sub.ChatID, 10), humanize.Time(sub.AddedAt))
		}
		return t.render(os.Stdout)
	},
}

func init() {
	subscribersCmd.AddCommand(subscribersAddCmd, subscribersRemoveCmd, subscribersListCmd)
	rootCmd.AddCommand(subscribersCmd)
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid chat id %q", s)
	}
	return id, nil
}

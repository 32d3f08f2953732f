package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dayos/internal/notify"
	"dayos/internal/termview"
)

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "Show the notification drawer",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.center.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println(termview.Empty("No notifications."))
				return nil
			}

			now := a.now()
			rows := make([][]string, 0, len(items))
			conflict := make([]bool, 0, len(items))
			unread := make([]bool, 0, len(items))
			for _, n := range items {
				title := n.Title
				if n.HasConflict() {
					title += " [conflict]"
				}
				rows = append(rows, []string{n.ID, title, n.Message, notify.FormatAge(n.Timestamp, now)})
				conflict = append(conflict, n.HasConflict())
				unread = append(unread, !n.Read)
			}
			unreadCount, err := a.center.Unread(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(termview.Title(fmt.Sprintf("Notifications (%d unread)", unreadCount)))
			fmt.Println(termview.Table([]string{"ID", "Title", "Message", "Age"}, rows, conflict, unread))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read [id]",
		Short: "Mark one notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.center.MarkRead(cmd.Context(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.center.MarkAllRead(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Marked %d read\n", n)
			return nil
		},
	})

	return cmd
}

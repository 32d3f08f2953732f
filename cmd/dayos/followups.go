package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dayos/internal/calendar"
	"dayos/internal/followup"
	"dayos/internal/model"
	"dayos/internal/termview"
)

func followupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "followups",
		Aliases: []string{"fu"},
		Short:   "Track people to get back to",
	}
	cmd.AddCommand(followupsListCmd())
	cmd.AddCommand(followupsAddCmd())
	cmd.AddCommand(followupsRescheduleCmd())
	cmd.AddCommand(followupsDoneCmd())
	return cmd
}

func followupsListCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active follow-ups by due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			var items []model.FollowUp
			if date != "" {
				day, err := a.parseDateFlag(date)
				if err != nil {
					return err
				}
				items, err = a.tracker.ActiveOn(ctx, a.cal, day)
				if err != nil {
					return err
				}
			} else {
				items, err = a.tracker.Active(ctx)
				if err != nil {
					return err
				}
			}

			if len(items) == 0 {
				fmt.Println(termview.Empty("No follow-ups. Use 'dayos followups add' to create one."))
				return nil
			}
			printFollowUps(a, items)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only follow-ups due on YYYY-MM-DD")
	return cmd
}

func followupsAddCmd() *cobra.Command {
	var (
		org       string
		meetingID string
		topic     string
		priority  string
		due       string
	)

	cmd := &cobra.Command{
		Use:   "add [person]",
		Short: "Create a follow-up",
		Long: `Create a follow-up for a person, or for the attendee of a meeting with --meeting.

--due takes a day offset (2, 5d, 1w, 30d), a date (2026-01-20) or an
RFC 3339 instant.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			choice, err := followup.ParseChoice(due, a.cal.Loc)
			if err != nil {
				return err
			}
			var prio model.Priority
			if priority != "" {
				if prio, err = model.ParsePriority(priority); err != nil {
					return err
				}
			}

			var f model.FollowUp
			switch {
			case meetingID != "":
				m, err := a.store.GetMeeting(ctx, meetingID)
				if err != nil {
					return err
				}
				f, err = a.tracker.CreateFromMeeting(ctx, m, prio, choice, a.now())
				if err != nil {
					return err
				}
			case len(args) == 1:
				f, err = a.tracker.Create(ctx, followup.Draft{
					Person:       args[0],
					Organization: org,
					MeetingTitle: topic,
					Priority:     prio,
				}, choice, a.now())
				if err != nil {
					return err
				}
			default:
				return errors.New("a person or --meeting is required")
			}

			fmt.Printf("Added follow-up %s: %s, due %s (%s)\n",
				shortID(f.ID), f.Person, f.DueAt.In(a.cal.Loc).Format("Mon Jan 2"), calendar.TimeRemaining(f.DueAt, a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization")
	cmd.Flags().StringVar(&meetingID, "meeting", "", "create from this meeting id")
	cmd.Flags().StringVar(&topic, "topic", "", "what the follow-up is about")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "high, medium or low (default medium)")
	cmd.Flags().StringVar(&due, "due", "2", "due choice")
	return cmd
}

func followupsRescheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule [id] [due]",
		Short: "Move a follow-up to a new due date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			id, err := resolveFollowUpID(ctx, a, args[0])
			if err != nil {
				return err
			}
			choice, err := followup.ParseChoice(args[1], a.cal.Loc)
			if err != nil {
				return err
			}
			f, err := a.tracker.Reschedule(ctx, id, choice, a.now())
			if err != nil {
				return err
			}
			fmt.Printf("Rescheduled %s to %s\n", f.Person, f.DueAt.In(a.cal.Loc).Format("Mon Jan 2 15:04"))
			return nil
		},
	}
}

func followupsDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done [id]",
		Aliases: []string{"complete"},
		Short:   "Complete a follow-up (removes it)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			id, err := resolveFollowUpID(ctx, a, args[0])
			if err != nil {
				return err
			}
			if err := a.tracker.Complete(ctx, id); err != nil {
				return err
			}
			fmt.Println("Completed", shortID(id))
			return nil
		},
	}
}

// resolveFollowUpID accepts a full id or a unique prefix.
func resolveFollowUpID(ctx context.Context, a *app, prefix string) (string, error) {
	items, err := a.tracker.Active(ctx)
	if err != nil {
		return "", err
	}
	var found []string
	for _, f := range items {
		if f.ID == prefix {
			return f.ID, nil
		}
		if strings.HasPrefix(f.ID, prefix) {
			found = append(found, f.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("follow-up %s: %w", prefix, model.ErrNotFound)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("follow-up prefix %q is ambiguous (%d matches)", prefix, len(found))
}

func printFollowUps(a *app, items []model.FollowUp) {
	now := a.now()
	rows := make([][]string, 0, len(items))
	overdue := make([]bool, 0, len(items))
	for _, f := range items {
		who := f.Person
		if f.Organization != "" {
			who += " (" + f.Organization + ")"
		}
		rem := calendar.TimeRemaining(f.DueAt, now)
		rows = append(rows, []string{
			shortID(f.ID), who, truncate(f.MeetingTitle, 30), f.Priority.String(),
			f.DueAt.In(a.cal.Loc).Format("Mon Jan 2"), rem.String(),
		})
		overdue = append(overdue, rem.Kind == calendar.Overdue)
	}
	fmt.Println(termview.Table([]string{"ID", "Person", "About", "Priority", "Due", "Left"}, rows, overdue, nil))
}

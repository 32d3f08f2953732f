package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dayos/internal/calendar"
	"dayos/internal/inbox"
	"dayos/internal/model"
	"dayos/internal/termview"
)

func weekCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the week containing --date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			anchor, err := a.parseDateFlag(date)
			if err != nil {
				return err
			}
			days := a.cal.WeekWindow(anchor)
			meetings, err := a.store.ListMeetingsBetween(ctx, days[0], days[6].AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			followUps, err := a.tracker.Active(ctx)
			if err != nil {
				return err
			}

			now := a.now()
			mb := calendar.Bucket(a.cal, days, meetings)
			fb := calendar.Bucket(a.cal, days, followUps)
			strip := make([]termview.WeekDay, 0, len(days))
			for i, d := range days {
				visible, overflow := calendar.Overflow(len(mb[i]))
				wd := termview.WeekDay{
					Label:     d.Format("Mon Jan 2"),
					Today:     a.cal.IsToday(d, now),
					Weekend:   calendar.IsWeekend(d),
					Overflow:  overflow,
					FollowUps: len(fb[i]),
				}
				for _, m := range mb[i][:visible] {
					wd.Meetings = append(wd.Meetings, m.Start.In(a.cal.Loc).Format("15:04")+"  "+m.Title)
				}
				strip = append(strip, wd)
			}
			fmt.Println(termview.Week(strip))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "anchor date YYYY-MM-DD (default today)")
	return cmd
}

func monthCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print the month grid with item counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			anchor, err := a.parseDateFlag(date)
			if err != nil {
				return err
			}
			grid := a.cal.MonthGrid(anchor)
			dates := make([]time.Time, len(grid))
			for i, d := range grid {
				dates[i] = d.Date
			}
			meetings, err := a.store.ListMeetingsBetween(ctx, dates[0], dates[len(dates)-1].AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			counts := calendar.Bucket(a.cal, dates, meetings)

			weekdays := make([]string, 7)
			for i := range weekdays {
				weekdays[i] = time.Weekday((int(a.cal.WeekStart) + i) % 7).String()[:2]
			}
			now := a.now()
			cells := make([]termview.MonthCell, len(grid))
			for i, d := range grid {
				cells[i] = termview.MonthCell{
					Day:     d.Date.Day(),
					Count:   len(counts[i]),
					Today:   a.cal.IsToday(d.Date, now),
					Weekend: d.Weekend,
				}
			}
			fmt.Println(termview.Month(a.cal.StartOfMonth(anchor).Format("January 2006"), weekdays, a.cal.LeadingBlanks(anchor), cells))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "any date in the month YYYY-MM-DD (default today)")
	return cmd
}

func dayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "List meetings and follow-ups on --date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			anchor, err := a.parseDateFlag(date)
			if err != nil {
				return err
			}
			start := a.cal.StartOfDay(anchor)
			meetings, err := a.store.ListMeetingsBetween(ctx, start, start.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			followUps, err := a.tracker.ActiveOn(ctx, a.cal, start)
			if err != nil {
				return err
			}

			fmt.Println(termview.Title(start.Format("Monday, January 2")))
			if len(meetings) == 0 && len(followUps) == 0 {
				fmt.Println(termview.Empty("Nothing scheduled."))
				return nil
			}
			if len(meetings) > 0 {
				printMeetings(a, meetings)
			}
			if len(followUps) > 0 {
				printFollowUps(a, followUps)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	return cmd
}

func inboxCmd() *cobra.Command {
	var query string
	var upcoming int

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show emails and upcoming meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			emails, err := a.store.ListEmails(ctx)
			if err != nil {
				return err
			}
			meetings, err := a.store.ListMeetings(ctx)
			if err != nil {
				return err
			}
			now := a.now()

			if query == "" {
				if next := inbox.Upcoming(meetings, now, upcoming); len(next) > 0 {
					fmt.Println(termview.Title("Upcoming"))
					printMeetings(a, next)
				}
			}

			inbox.SortNewestFirst(emails)
			res := inbox.Search(query, emails, meetings)
			if res.Empty() {
				fmt.Printf("No results for %q.\n", query)
				return nil
			}

			fmt.Println(termview.Title(fmt.Sprintf("Inbox (%d unread)", inbox.UnreadCount(emails))))
			rows := make([][]string, 0, len(res.Emails))
			unread := make([]bool, 0, len(res.Emails))
			for _, e := range res.Emails {
				rows = append(rows, []string{shortID(e.ID), e.Sender, truncate(e.Subject, 50), inbox.FormatReceived(e.ReceivedAt.In(a.cal.Loc), now)})
				unread = append(unread, !e.Read)
			}
			fmt.Println(termview.Table([]string{"ID", "From", "Subject", "Received"}, rows, nil, unread))

			if query != "" && len(res.Meetings) > 0 {
				fmt.Println(termview.Title("Meetings"))
				printMeetings(a, res.Meetings)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search text")
	cmd.Flags().IntVar(&upcoming, "upcoming", inbox.DefaultUpcoming, "number of upcoming meetings")
	cmd.AddCommand(inboxReadCmd())
	return cmd
}

func inboxReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [id]",
		Short: "Mark an email read (id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			emails, err := a.store.ListEmails(ctx)
			if err != nil {
				return err
			}
			var match []model.Email
			for _, e := range emails {
				if strings.HasPrefix(e.ID, args[0]) {
					match = append(match, e)
				}
			}
			if len(match) != 1 {
				return fmt.Errorf("email %q: %d matches", args[0], len(match))
			}
			changed, err := a.store.MarkEmailRead(ctx, match[0].ID)
			if err != nil {
				return err
			}
			if changed {
				fmt.Println("Marked read:", match[0].Subject)
			} else {
				fmt.Println("Already read:", match[0].Subject)
			}
			return nil
		},
	}
}

func printMeetings(a *app, meetings []model.Meeting) {
	rows := make([][]string, 0, len(meetings))
	for _, m := range meetings {
		who := m.Person
		if m.Organization != "" {
			who += " (" + m.Organization + ")"
		}
		rows = append(rows, []string{
			m.Start.In(a.cal.Loc).Format("Mon Jan 2"),
			m.Start.In(a.cal.Loc).Format("15:04") + "–" + m.End.In(a.cal.Loc).Format("15:04"),
			m.Title,
			who,
		})
	}
	fmt.Println(termview.Table([]string{"Date", "Time", "Meeting", "With"}, rows, nil, nil))
}

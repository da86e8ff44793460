package main

import (
	"fmt"
	"strings"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/server"
	"github.com/spf13/cobra"
)

func (a *app) dueCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the tasks due on a day",
		Long: `List the tasks due on a day. With --days, list every task due at least
once in the window starting on --date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.dayFlag(cmd, "date")
			if err != nil {
				return err
			}
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			tr, err := a.open()
			if err != nil {
				return err
			}
			defer tr.Close()

			if days == 0 {
				printTasks(cmd.OutOrStdout(), "Due "+day.String(), tr.DueOn(day), day)
				return nil
			}
			heading := fmt.Sprintf("Due %s to %s", day, day.AddDays(days))
			printTasks(cmd.OutOrStdout(), heading, tr.DueInRange(day, days), day)
			return nil
		},
	}
	cmd.Flags().String("date", "", "day to list, YYYY-MM-DD, today or tomorrow (default today)")
	cmd.Flags().IntVar(&days, "days", 0, "also include tasks due in the following n days")
	return cmd
}

func (a *app) upcomingCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show the agenda for the next days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.dayFlag(cmd, "date")
			if err != nil {
				return err
			}
			if days < 0 || days > server.MaxAgendaDays {
				return fmt.Errorf("--days must be between 0 and %d", server.MaxAgendaDays)
			}
			tr, err := a.open()
			if err != nil {
				return err
			}
			defer tr.Close()

			printOccurrences(cmd.OutOrStdout(), tr.Upcoming(day, days))
			return nil
		},
	}
	cmd.Flags().String("date", "", "first day, YYYY-MM-DD, today or tomorrow (default today)")
	cmd.Flags().IntVar(&days, "days", 7, "number of days after --date to include")
	return cmd
}

func (a *app) nextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <id>",
		Short: "Show the next day a task is due",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			after, err := a.dayFlag(cmd, "after")
			if err != nil {
				return err
			}
			tr, err := a.open()
			if err != nil {
				return err
			}
			defer tr.Close()

			next, err := tr.NextOccurrence(args[0], after)
			if err != nil {
				return err
			}
			d, ok := next.Get()
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No occurrence within %d days of %s\n", recurrence.Horizon, after)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d, d.Weekday())
			return nil
		},
	}
	cmd.Flags().String("after", "", "first day to consider, YYYY-MM-DD, today or tomorrow (default today)")
	return cmd
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "describe <id>",
		Aliases: []string{"show"},
		Short:   "Show a task and its recurrence rule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.open()
			if err != nil {
				return err
			}
			defer tr.Close()

			t, err := tr.Get(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, styleHeader.Render(t.Title))
			fmt.Fprintf(w, "ID:        %s\n", t.ID)
			if t.CategoryID != "" {
				fmt.Fprintf(w, "Category:  %s\n", t.CategoryID)
			}
			fmt.Fprintf(w, "Repeats:   %s\n", t.Describe())
			fmt.Fprintf(w, "Starts:    %s\n", t.Recurrence.StartDate())
			if rule, err := recurrence.RRuleString(t.Recurrence); err == nil {
				fmt.Fprintf(w, "RRULE:     %s\n", rule)
			}
			if d, ok := t.LastCompleted.Get(); ok {
				fmt.Fprintf(w, "Last done: %s\n", d)
			}
			today := a.today()
			fmt.Fprintf(w, "Streak:    %d\n", t.Streak(today))
			if d, ok := t.NextOccurrence(today).Get(); ok {
				fmt.Fprintf(w, "Next:      %s\n", d)
			}
			if t.EstimatedMinutes > 0 {
				fmt.Fprintf(w, "Estimate:  %d min\n", t.EstimatedMinutes)
			}
			if t.Notes != "" {
				fmt.Fprintf(w, "Notes:     %s\n", t.Notes)
			}
			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find tasks by title, notes or schedule",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.open()
			if err != nil {
				return err
			}
			defer tr.Close()

			query := strings.Join(args, " ")
			today := a.today()
			printTasks(cmd.OutOrStdout(), fmt.Sprintf("Matching %q", query), tr.Search(query), today)
			return nil
		},
	}
}

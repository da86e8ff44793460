package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyp0633/librecur/calendar"
	"github.com/cyp0633/librecur/task"
	"github.com/cyp0633/librecur/tracker"
	"github.com/spf13/cobra"
)

func (a *app) initCmd() *cobra.Command {
	var sample, force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the task file, optionally with sample tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.store()
			if s.exists() && !force {
				return fmt.Errorf("task file %s already exists (use --force to overwrite)", s.path)
			}

			cfg := a.cfg.Tracker
			cfg.OnboardingCompleted = false
			cfg.UseSampleData = false
			tr, err := tracker.New(cfg, tracker.WithLogger(a.logger), tracker.WithClock(a.clock))
			if err != nil {
				return err
			}
			defer tr.Close()

			if err := tr.CompleteOnboarding(sample); err != nil {
				return err
			}
			if err := s.save(tr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s with %d tasks\n", s.path, tr.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "start with the sample categories and tasks")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing task file")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var (
		rule     ruleFlags
		category string
		notes    string
		minutes  int
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a recurring task",
		Long: `Add a recurring task.

Examples:
  librecur add "Feed the cats" --category pets --minutes 5
  librecur add "Water plants" --every weekly --on sun,wed
  librecur add "Deep clean bathroom" --every weekly --interval 2 --on sat
  librecur add "Pay rent" --every monthly --day 1
  librecur add "Book club" --every monthly --week 2 --on tue
  librecur add "Stretch" --rrule "FREQ=WEEKLY;BYDAY=MO,TH"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			p, err := rule.pattern(a.today())
			if err != nil {
				return err
			}

			return a.mutate(func(tr *tracker.Tracker) error {
				t, err := tr.Add(task.Options{
					Title:            title,
					CategoryID:       category,
					Recurrence:       p,
					Notes:            notes,
					EstimatedMinutes: minutes,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s (%s)\n", t.ID, t.Title, t.Describe())
				return nil
			})
		},
	}
	rule.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "category ID")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "estimated minutes")
	return cmd
}

func (a *app) completeCmd() *cobra.Command {
	var undo, toggle bool
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task completed for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.dayFlag(cmd, "date")
			if err != nil {
				return err
			}
			return a.mutate(func(tr *tracker.Tracker) error {
				var (
					t   task.Task
					err error
				)
				if toggle {
					t, err = tr.Toggle(args[0], day)
				} else {
					t, err = tr.SetCompleted(args[0], day, !undo)
				}
				if err != nil {
					return err
				}

				state := "not completed"
				if t.IsCompletedOn(day) {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s marked %s on %s", t.Title, state, day)
				if !t.IsDueOn(day) {
					fmt.Fprint(cmd.OutOrStdout(), " (not due that day)")
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().String("date", "", "day to mark, YYYY-MM-DD, today or tomorrow (default today)")
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the day not completed")
	cmd.Flags().BoolVar(&toggle, "toggle", false, "flip the current state")
	cmd.MarkFlagsMutuallyExclusive("undo", "toggle")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(func(tr *tracker.Tracker) error {
				if err := tr.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import recurring VTODOs from an .ics or xCal file",
		Long: `Import recurring VTODOs from an iCalendar (.ics) or xCal (.xml) file.
Tasks with an ID already present are replaced; others are added.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var tasks []task.Task
			if strings.EqualFold(filepath.Ext(args[0]), ".xml") {
				tasks, err = calendar.DecodeXCal(f)
			} else {
				tasks, err = calendar.Decode(f)
			}
			if err != nil {
				return err
			}

			return a.mutate(func(tr *tracker.Tracker) error {
				for _, t := range tasks {
					if err := tr.Put(t); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", len(tasks))
				return nil
			})
		},
	}
}

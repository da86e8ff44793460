package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/task"
)

var (
	colorPrimary   = lipgloss.Color("205") // Pink
	colorSecondary = lipgloss.Color("241") // Gray
	colorSuccess   = lipgloss.Color("42")  // Green
	colorID        = lipgloss.Color("75")  // Blue

	styleHeader  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleSubtle  = lipgloss.NewStyle().Foreground(colorSecondary)
	styleDone    = lipgloss.NewStyle().Foreground(colorSuccess)
	styleID      = lipgloss.NewStyle().Foreground(colorID)
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleHeading = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
)

func checkbox(done bool) string {
	if done {
		return styleDone.Render("[x]")
	}
	return "[ ]"
}

// printTasks lists tasks with their completion state on day.
func printTasks(w io.Writer, heading string, tasks []task.Task, day recurrence.Day) {
	fmt.Fprintln(w, styleHeader.Render(heading))
	if len(tasks) == 0 {
		fmt.Fprintln(w, styleSubtle.Render("Nothing due."))
		return
	}
	for _, t := range tasks {
		line := fmt.Sprintf("%s %-10s %s", checkbox(t.IsCompletedOn(day)), styleID.Render(t.ID), styleTitle.Render(t.Title))
		if t.EstimatedMinutes > 0 {
			line += styleSubtle.Render(fmt.Sprintf(" (%d min)", t.EstimatedMinutes))
		}
		fmt.Fprintf(w, "%s  %s\n", line, styleSubtle.Render(t.Describe()))
	}
	fmt.Fprintf(w, "\n%s\n", styleSubtle.Render(fmt.Sprintf("Total: %d task(s)", len(tasks))))
}

// printOccurrences groups occurrences under a heading per day.
func printOccurrences(w io.Writer, occ []task.Occurrence) {
	if len(occ) == 0 {
		fmt.Fprintln(w, styleSubtle.Render("Nothing due."))
		return
	}
	var current recurrence.Day
	for _, o := range occ {
		if !o.Day.Equal(current) {
			if !current.IsZero() {
				fmt.Fprintln(w)
			}
			current = o.Day
			fmt.Fprintln(w, styleHeading.Render(fmt.Sprintf("%s %s", o.Day, o.Day.Weekday())))
		}
		fmt.Fprintf(w, "  %s %-10s %s\n", checkbox(o.Completed), styleID.Render(o.Task.ID), o.Task.Title)
	}
}

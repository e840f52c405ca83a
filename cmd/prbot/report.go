package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/prbot/prbot/internal/decision"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/sync"
)

// printPullRequestReport renders "pull-request show"'s terminal output: a
// bordered header box in the teacher's report style, followed by
// color-coded status lines for each ladder input that feeds the commit
// status and step label.
func printPullRequestReport(rt *runtime, owner, name string, number int) {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 2)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	fmt.Println(boxStyle.Render(titleStyle.Render(fmt.Sprintf("%s/%s #%d", owner, name, number))))

	state, err := sync.BuildState(context.Background(), rt.store, rt.platform, owner, name, number)
	if err != nil {
		color.New(color.FgRed).Printf("  failed to build sync state: %v\n", err)
		return
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	printBool(green, red, "title valid", state.ValidPRTitle)
	printStatus(green, yellow, red, "checks", string(state.CheckStatus), model.CheckStatusPass, model.CheckStatusWaiting)
	printStatus(green, yellow, red, "qa", string(state.QaStatus), model.QaStatusPass, model.QaStatusWaiting)
	printBool(green, red, "mergeable", state.Mergeable)
	printBool(green, red, "unlocked", !state.Locked)

	commit := decision.Commit(state)
	step := decision.Step(state)
	switch commit.State {
	case "success":
		green.Printf("  commit status: %s (%s)\n", commit.State, commit.Message)
	case "pending":
		yellow.Printf("  commit status: %s (%s)\n", commit.State, commit.Message)
	default:
		red.Printf("  commit status: %s (%s)\n", commit.State, commit.Message)
	}
	fmt.Printf("  step: %s\n", step)
}

func printBool(green, red *color.Color, label string, ok bool) {
	if ok {
		green.Printf("  %s: yes\n", label)
	} else {
		red.Printf("  %s: no\n", label)
	}
}

func printStatus[T ~string](green, yellow, red *color.Color, label string, value string, pass, waiting T) {
	switch value {
	case string(pass):
		green.Printf("  %s: %s\n", label, value)
	case string(waiting):
		yellow.Printf("  %s: %s\n", label, value)
	default:
		red.Printf("  %s: %s\n", label, value)
	}
}

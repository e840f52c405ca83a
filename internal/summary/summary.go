// Package summary renders the Markdown status comment prbot keeps in sync
// on every pull request it tracks.
package summary

import (
	"strings"

	"github.com/prbot/prbot/internal/decision"
	"github.com/prbot/prbot/internal/message"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/syncstate"
)

// Render builds the full summary comment body for s.
func Render(s *syncstate.State) string {
	var b strings.Builder

	b.WriteString("_This is an auto-generated message summarizing this pull request._\n\n")
	b.WriteString(renderRules(s))
	b.WriteString("\n\n")
	b.WriteString(renderChecks(s))
	b.WriteString("\n\n")
	b.WriteString(renderConfig(s))
	b.WriteString("\n\n")
	b.WriteString(renderFooter(s))
	b.WriteString("\n")
	b.WriteString(message.Footer())

	return b.String()
}

func renderRules(s *syncstate.State) string {
	var b strings.Builder
	b.WriteString(":pencil: &mdash; **Rules**\n\n")

	titleValid := "_invalid!_ :x:"
	if s.ValidPRTitle {
		titleValid = "_valid!_ :heavy_check_mark:"
	}
	b.WriteString("> - :speech_balloon: **Title validation**: " + titleValid + "\n")

	regex := s.TitleRegex
	if regex == "" {
		regex = "None"
	}
	b.WriteString(">   - _Rule_: " + regex + "\n")

	b.WriteString("> - :twisted_rightwards_arrows: **Merge strategy**: _" + capitalize(string(s.MergeStrategy)) + "_\n")

	names := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		names = append(names, r.Name)
	}
	ruleText := "None"
	if len(names) > 0 {
		ruleText = strings.Join(names, ", ")
	}
	b.WriteString("> - :straight_ruler: **Pull request rules**: _" + ruleText + "_")

	return b.String()
}

func renderChecks(s *syncstate.State) string {
	var b strings.Builder
	b.WriteString(":speech_balloon: &mdash; **Status comment**\n\n")

	wip := "No :heavy_check_mark:"
	if s.Wip {
		wip = "Yes :x:"
	}
	b.WriteString("> - :construction: **WIP?**: " + wip + "\n")

	var checkMsg string
	switch s.CheckStatus {
	case model.CheckStatusPass:
		checkMsg = "_passed_! :heavy_check_mark:"
	case model.CheckStatusWaiting:
		checkMsg = "_waiting_... :clock2:"
	case model.CheckStatusFail:
		checkMsg = "_failed_. :x:"
	default:
		checkMsg = "_skipped_. :heavy_check_mark:"
	}
	b.WriteString("> - :checkered_flag: **Checks**: " + checkMsg + "\n")

	var reviewMsg string
	switch {
	case s.ChangesRequested():
		reviewMsg = "_waiting on change requests..._ :x:"
	case s.ReviewRequired():
		reviewMsg = "_waiting..._ :clock2:"
	case s.ReviewSkipped():
		reviewMsg = "_skipped._ :heavy_check_mark:"
	default:
		reviewMsg = "_passed!_ :heavy_check_mark:"
	}
	b.WriteString("> - :mag: **Code reviews**: " + reviewMsg + "\n")

	var qaMsg string
	switch s.QaStatus {
	case model.QaStatusPass:
		qaMsg = "_passed_! :heavy_check_mark:"
	case model.QaStatusWaiting:
		qaMsg = "_waiting_... :clock2:"
	case model.QaStatusFail:
		qaMsg = "_failed_. :x:"
	default:
		qaMsg = "_skipped_. :heavy_check_mark:"
	}
	b.WriteString("> - :test_tube: **QA**: " + qaMsg + "\n")

	locked := "No :heavy_check_mark:"
	if s.Locked {
		locked = "Yes :x:"
	}
	b.WriteString("> - :lock: **Locked?**: " + locked + "\n")

	mergeable := "No :x:"
	if s.Mergeable || s.Merged {
		mergeable = "Yes :heavy_check_mark:"
	}
	b.WriteString("> - :twisted_rightwards_arrows: **Mergeable?**: " + mergeable)

	return b.String()
}

func renderConfig(s *syncstate.State) string {
	automerge := "No :x:"
	if s.Automerge {
		automerge = "Yes :heavy_check_mark:"
	}
	return ":gear: &mdash; **Configuration**\n\n" +
		"> - :twisted_rightwards_arrows: **Automerge**: " + automerge
}

func renderFooter(s *syncstate.State) string {
	status := decision.Commit(s)
	return ":scroll: &mdash; **Current status**\n\n" +
		"> " + capitalize(status.State) + ": " + status.Message + "\n\n" +
		"[_See checks output by clicking this link :triangular_flag_on_post:_](" + s.CheckURL + ")"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

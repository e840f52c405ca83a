package command

import (
	"strings"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/pkg/errors"
)

// Parse reads a single comment line as a bot command. It returns
// (nil, nil) when the line is not addressed to nickname at all — that is
// not an error, just an ordinary comment. A line addressed to nickname
// with an unrecognized verb or wrong argument count is a parse error.
func Parse(line, nickname string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, nil
	}
	if fields[0] != nickname {
		return nil, nil
	}

	verb := fields[1]
	args := fields[2:]

	switch verb {
	case "qa+":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetQa{Status: model.QaStatusPass}, nil
	case "qa-":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetQa{Status: model.QaStatusFail}, nil
	case "qa?":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetQa{Status: model.QaStatusWaiting}, nil
	case "noqa+":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetQa{Status: model.QaStatusSkipped}, nil

	case "nochecks-":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetChecksEnabled{Enabled: true}, nil
	case "nochecks+":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetChecksEnabled{Enabled: false}, nil

	case "automerge+":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetAutomerge{Automerge: true}, nil
	case "automerge-":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetAutomerge{Automerge: false}, nil

	case "lock+":
		return SetLocked{Locked: true, Comment: strings.Join(args, " ")}, nil
	case "lock-":
		return SetLocked{Locked: false, Comment: strings.Join(args, " ")}, nil

	case "r+":
		if len(args) == 0 {
			return nil, parseErr("missing reviewers to set")
		}
		return AssignReviewers{Reviewers: args}, nil
	case "r-":
		if len(args) == 0 {
			return nil, parseErr("missing reviewers to unset")
		}
		return UnassignReviewers{Reviewers: args}, nil

	case "strategy+":
		if len(args) > 1 {
			return nil, parseErr("unexpected arguments for command")
		}
		if len(args) == 0 {
			return nil, parseErr("missing strategy name")
		}
		strat, err := parseStrategy(args[0])
		if err != nil {
			return nil, err
		}
		return SetStrategy{Strategy: &strat}, nil
	case "strategy?":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return SetStrategy{Strategy: nil}, nil

	case "merge":
		if len(args) == 0 {
			return Merge{Strategy: nil}, nil
		}
		if len(args) > 1 {
			return nil, parseErr("unexpected arguments for command")
		}
		strat, err := parseStrategy(args[0])
		if err != nil {
			return nil, err
		}
		return Merge{Strategy: &strat}, nil

	case "labels+":
		if len(args) == 0 {
			return nil, parseErr("missing labels to set")
		}
		return AssignLabels{Labels: args}, nil
	case "labels-":
		if len(args) == 0 {
			return nil, parseErr("missing labels to unset")
		}
		return UnassignLabels{Labels: args}, nil

	case "ping":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return Ping{}, nil

	case "gif":
		if len(args) == 0 {
			return nil, parseErr("missing gif query")
		}
		return Gif{Query: strings.Join(args, " ")}, nil

	case "sync":
		if len(args) != 0 {
			return nil, parseErr("unexpected arguments for command")
		}
		return Sync{}, nil

	default:
		return nil, parseErr("unknown command \"" + verb + "\"")
	}
}

func parseStrategy(s string) (model.MergeStrategy, error) {
	switch model.MergeStrategy(s) {
	case model.MergeStrategyMerge, model.MergeStrategySquash, model.MergeStrategyRebase:
		return model.MergeStrategy(s), nil
	default:
		return "", parseErr("invalid merge strategy: " + s)
	}
}

func parseErr(message string) error {
	return errors.New(errors.ErrCodeCommandParse, message)
}

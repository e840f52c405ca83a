package projector

import (
	"context"
	"sort"
	"strings"

	"github.com/prbot/prbot/internal/decision"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/syncstate"
)

const stepLabelPrefix = "step/"

// StepLabelProjector keeps the single `step/<label>` issue label on a pull
// request in sync with the decision ladder's verdict.
type StepLabelProjector struct {
	platform platform.Client
}

// NewStepLabelProjector builds a StepLabelProjector.
func NewStepLabelProjector(plat platform.Client) *StepLabelProjector {
	return &StepLabelProjector{platform: plat}
}

// Project evaluates the step-label ladder against s, replaces any existing
// `step/*` label with it, and returns the label value applied.
func (p *StepLabelProjector) Project(ctx context.Context, s *syncstate.State) (string, error) {
	label := decision.Step(s)

	existing, err := p.platform.ListLabels(ctx, s.Owner, s.Name, s.Number)
	if err != nil {
		return "", err
	}

	newLabels := make([]string, 0, len(existing)+1)
	for _, l := range existing {
		if !strings.HasPrefix(l, stepLabelPrefix) {
			newLabels = append(newLabels, l)
		}
	}
	newLabels = append(newLabels, stepLabelPrefix+label)
	sort.Strings(newLabels)

	if err := p.platform.ReplaceLabels(ctx, s.Owner, s.Name, s.Number, newLabels); err != nil {
		return "", err
	}
	return label, nil
}

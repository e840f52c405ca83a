// Package projector applies a built sync state onto GitHub: the commit
// status, the step/<label> issue label, and the summary comment.
package projector

import (
	"context"

	"github.com/prbot/prbot/internal/decision"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/syncstate"
)

// CommitStatusProjector posts the decision ladder's commit-status verdict
// to the head commit of a pull request.
type CommitStatusProjector struct {
	platform platform.Client
}

// NewCommitStatusProjector builds a CommitStatusProjector.
func NewCommitStatusProjector(plat platform.Client) *CommitStatusProjector {
	return &CommitStatusProjector{platform: plat}
}

// Project evaluates the commit-status ladder against s and pushes it.
func (p *CommitStatusProjector) Project(ctx context.Context, s *syncstate.State) error {
	status := decision.Commit(s)
	return p.platform.SetCommitStatus(ctx, s.Owner, s.Name, s.HeadSHA,
		platform.CommitStatusState(status.State), status.Title, status.Message)
}

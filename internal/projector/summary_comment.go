package projector

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/prbot/prbot/internal/lock"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/internal/summary"
	"github.com/prbot/prbot/internal/syncstate"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

// SummaryCommentProjector keeps the auto-generated summary comment on a
// pull request up to date: it updates the existing comment if one was
// already created, or creates it under a lock the first time so two
// concurrent webhook deliveries for the same PR never create two comments.
type SummaryCommentProjector struct {
	platform platform.Client
	store    store.Store
	lock     lock.Client
}

// NewSummaryCommentProjector builds a SummaryCommentProjector.
func NewSummaryCommentProjector(plat platform.Client, st store.Store, lockClient lock.Client) *SummaryCommentProjector {
	return &SummaryCommentProjector{platform: plat, store: st, lock: lockClient}
}

// Project renders s and pushes it to the PR's summary comment.
func (p *SummaryCommentProjector) Project(ctx context.Context, s *syncstate.State) error {
	body := summary.Render(s)

	if s.StatusCommentID > 0 {
		return p.platform.UpdateComment(ctx, s.Owner, s.Name, s.StatusCommentID, body)
	}

	key := "summary." + s.Owner + "." + s.Name + "." + strconv.Itoa(s.Number)
	err := p.lock.Lock(ctx, key, func() error {
		commentID, err := p.platform.CreateComment(ctx, s.Owner, s.Name, s.Number, body)
		if err != nil {
			return err
		}
		return p.persistCommentID(s, commentID)
	})
	if err == nil {
		return nil
	}

	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) && appErr.Code == pkgerrors.ErrCodeLockUnavailable {
		logger.Error("could not obtain lock to create initial summary comment, skipping",
			zap.String("pr", key))
		return nil
	}
	return err
}

func (p *SummaryCommentProjector) persistCommentID(s *syncstate.State, commentID int64) error {
	repo, err := p.store.Repository().FindByPath(s.Owner, s.Name)
	if err != nil {
		return err
	}
	pr, err := p.store.PullRequest().FindByNumber(repo.ID, uint(s.Number))
	if err != nil {
		return err
	}
	pr.StatusCommentID = commentID
	return p.store.PullRequest().Save(pr)
}

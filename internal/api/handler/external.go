package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prbot/prbot/internal/api/middleware"
	"github.com/prbot/prbot/internal/command"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/internal/sync"
	"github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

// ExternalAccountLookup adapts store.Store to middleware.ExternalAccountLookup.
type ExternalAccountLookup struct {
	Store store.Store
}

// PublicKeyFor implements middleware.ExternalAccountLookup.
func (l ExternalAccountLookup) PublicKeyFor(username string) (string, error) {
	account, err := l.Store.ExternalAccount().FindByUsername(username)
	if err != nil {
		return "", err
	}
	return account.PublicKey, nil
}

// qaStatusRequest is the payload for POST /external/set-qa-status.
type qaStatusRequest struct {
	RepositoryPath     string `json:"repository_path" binding:"required"`
	PullRequestNumbers []int  `json:"pull_request_numbers" binding:"required"`
	Author             string `json:"author" binding:"required"`
	Status             *bool  `json:"status"`
}

// ExternalHandler serves the bearer-token-authenticated endpoint external
// systems (CI, chat bots) use to push a QA verdict onto one or more PRs.
type ExternalHandler struct {
	executor     *command.Executor
	orchestrator *sync.Orchestrator
}

// NewExternalHandler builds an ExternalHandler.
func NewExternalHandler(executor *command.Executor, orchestrator *sync.Orchestrator) *ExternalHandler {
	return &ExternalHandler{executor: executor, orchestrator: orchestrator}
}

// SetQaStatus handles POST /external/set-qa-status: translates status into
// the equivalent SetQa command, executes it for every listed PR number on
// repositoryPath, and re-syncs each one without forcing row creation.
func (h *ExternalHandler) SetQaStatus(c *gin.Context) {
	var req qaStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errors.ErrCodeValidation, "message": err.Error()})
		return
	}

	owner, name, ok := splitRepositoryPath(req.RepositoryPath)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "repository_path must be of the form owner/name",
		})
		return
	}

	qaStatus := model.QaStatusWaiting
	switch {
	case req.Status != nil && *req.Status:
		qaStatus = model.QaStatusPass
	case req.Status != nil && !*req.Status:
		qaStatus = model.QaStatusFail
	}

	username, _ := c.Get(middleware.ExternalAccountContextKey)
	logger.Info("external qa status change",
		zap.Any("username", username),
		zap.String("repository", req.RepositoryPath),
		zap.String("author", req.Author),
		zap.String("qa_status", string(qaStatus)),
	)

	ctx := c.Request.Context()
	for _, number := range req.PullRequestNumbers {
		cc := command.Context{Owner: owner, Name: name, Number: number, Author: req.Author}
		if _, err := h.executor.Execute(ctx, command.SetQa{Status: qaStatus}, cc); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": errors.ErrCodeInternal, "message": err.Error()})
			return
		}
		if _, err := h.orchestrator.Process(ctx, owner, name, number, false); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": errors.ErrCodeInternal, "message": err.Error()})
			return
		}
	}

	c.Status(http.StatusNoContent)
}

func splitRepositoryPath(path string) (owner, name string, ok bool) {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i], path[i+1:], i > 0 && i < len(path)-1
		}
	}
	return "", "", false
}

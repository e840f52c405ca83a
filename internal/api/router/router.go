// Package router sets up the API routes for the application.
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/prbot/prbot/consts"
	"github.com/prbot/prbot/internal/api/handler"
	"github.com/prbot/prbot/internal/api/middleware"
	"github.com/prbot/prbot/internal/command"
	"github.com/prbot/prbot/internal/config"
	"github.com/prbot/prbot/internal/gif"
	"github.com/prbot/prbot/internal/lock"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/internal/sync"
	"github.com/prbot/prbot/internal/webhook"
)

// Setup configures prbot's HTTP surface: the GitHub webhook intake, the
// external QA-status endpoint, and a health/root check. cfg.Server.Debug
// additionally exposes GET /__crash, matching the original's own
// dev-only crash-test route.
func Setup(r *gin.Engine, cfg *config.Config, st store.Store, plat platform.Client, lockClient lock.Client, gifClient gif.Client) {
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{AccessLog: cfg.Logging.AccessLog}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))
	r.Use(otelgin.Middleware(consts.ServiceName))

	orchestrator := sync.NewOrchestrator(st, plat, lockClient)
	executor := command.NewExecutor(plat, st, gifClient, lockClient)
	dispatcher := webhook.NewDispatcher(orchestrator, executor, cfg.Bot.Nickname)
	webhookHandler := handler.NewWebhookHandler(webhook.NewHandler(cfg.GitHub.WebhookSecret, dispatcher))
	externalHandler := handler.NewExternalHandler(executor, orchestrator)
	lookup := handler.ExternalAccountLookup{Store: st}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome on prbot!"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"database": pingDatabase(st),
			"lock":     pingLock(c.Request.Context(), lockClient),
		})
	})

	r.POST("/webhook", webhookHandler.HandleWebhook)

	external := r.Group("/external")
	external.Use(middleware.ExternalAuth(lookup))
	external.POST("/set-qa-status", externalHandler.SetQaStatus)

	if cfg.Server.Debug {
		r.GET("/__crash", func(c *gin.Context) {
			panic("manual crash test")
		})
	}
}

// pingDatabase reports whether st's underlying connection can serve a query.
func pingDatabase(st store.Store) bool {
	db := st.DB()
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// pingLock reports whether lockClient is reachable.
func pingLock(ctx context.Context, lockClient lock.Client) bool {
	if lockClient == nil {
		return false
	}
	return lockClient.Ping(ctx) == nil
}

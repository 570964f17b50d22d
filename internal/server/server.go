// Package server exposes the HTTP surface: contract generation, dispatch,
// the signing webhook, and status lookups.
package server

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deedflow/internal/common/config"
	"deedflow/internal/common/logger"
	"deedflow/internal/contract"
	"deedflow/internal/pandadoc"
	"deedflow/internal/server/middleware"
	"deedflow/internal/store"
)

// ContractStreamer produces contract prose as a live stream.
type ContractStreamer interface {
	StreamCompletion(ctx context.Context, system, prompt string, w io.Writer) error
}

// PDFRenderer turns contract text into the final signable PDF.
type PDFRenderer interface {
	Render(text, propertyAddress string) ([]byte, error)
}

// DocumentDispatcher runs the provider-side document lifecycle.
type DocumentDispatcher interface {
	CreateAndSend(ctx context.Context, pdfData []byte, form contract.FormData) (*pandadoc.SendResult, error)
	GetDocument(ctx context.Context, documentID string) (*pandadoc.Document, error)
}

// EventRouter handles a verified webhook event batch.
type EventRouter interface {
	HandleBatch(ctx context.Context, events []pandadoc.WebhookEvent) error
}

// AgentNotifier sends the agent's dispatch confirmation email.
type AgentNotifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}

type Server struct {
	cfg        *config.Config
	logger     logger.Logger
	streamer   ContractStreamer
	renderer   PDFRenderer
	dispatcher DocumentDispatcher
	events     EventRouter
	mailer     AgentNotifier
	contracts  store.ContractStore
}

type Deps struct {
	Streamer   ContractStreamer
	Renderer   PDFRenderer
	Dispatcher DocumentDispatcher
	Events     EventRouter
	Mailer     AgentNotifier
	Contracts  store.ContractStore
}

func New(cfg *config.Config, log logger.Logger, deps Deps) *Server {
	return &Server{
		cfg:        cfg,
		logger:     log.WithFields(map[string]interface{}{"component": "http"}),
		streamer:   deps.Streamer,
		renderer:   deps.Renderer,
		dispatcher: deps.Dispatcher,
		events:     deps.Events,
		mailer:     deps.Mailer,
		contracts:  deps.Contracts,
	}
}

// Engine builds the configured gin engine with the full middleware chain and
// route table.
func (s *Server) Engine() *gin.Engine {
	if s.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(s.logger),
		middleware.RequestLogger(s.logger),
		middleware.RateLimit(s.cfg.Server.RateLimit),
	)

	engine.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	{
		api.POST("/generate", s.handleGenerate)
		api.POST("/send-contract", s.handleSendContract)
		api.POST("/webhook/pandadoc", s.handleWebhook)
		api.GET("/contracts", s.handleListContracts)
		api.GET("/contracts/:id", s.handleGetContract)
	}

	return engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": s.cfg.App.Name,
	})
}

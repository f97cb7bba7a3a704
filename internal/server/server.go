package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timberbase/timberbase/internal/company"
	companyservice "github.com/timberbase/timberbase/internal/company/service"
	"github.com/timberbase/timberbase/internal/config"
	"github.com/timberbase/timberbase/internal/ledger"
	obsmetrics "github.com/timberbase/timberbase/internal/observability/metrics"
	"github.com/timberbase/timberbase/internal/payment"
	paymentwebhook "github.com/timberbase/timberbase/internal/payment/webhook"
	"github.com/timberbase/timberbase/internal/project"
	projectservice "github.com/timberbase/timberbase/internal/project/service"
	"github.com/timberbase/timberbase/internal/subscription"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	obsmetrics.Module,
	fx.Provide(NewEngine),
	company.Module,
	subscription.Module,
	ledger.Module,
	payment.Module,
	project.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	companySvc *companyservice.Service
	projectSvc *projectservice.Service
	webhookSvc *paymentwebhook.Service
}

type Params struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	CompanySvc *companyservice.Service
	ProjectSvc *projectservice.Service
	WebhookSvc *paymentwebhook.Service
}

func NewServer(p Params) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		companySvc: p.CompanySvc,
		projectSvc: p.ProjectSvc,
		webhookSvc: p.WebhookSvc,
	}
}

func (s *Server) RegisterRoutes() {
	// provider callbacks, authenticated by shared-secret token
	s.engine.POST("/webhooks/lastlink", s.HandleLastlinkWebhook)
	s.engine.GET("/webhooks/lastlink", s.HandleWebhookHealth)

	api := s.engine.Group("/api/v1")
	{
		scoped := api.Group("", s.CompanyContext())
		{
			scoped.GET("/company", s.HandleGetCompany)

			// reads are never gated; only mutations need an active subscription
			projects := scoped.Group("/projects")
			{
				projects.GET("", s.HandleListProjects)
				projects.GET("/:projectID", s.HandleGetProject)

				gated := projects.Group("", s.RequirePremium())
				{
					gated.POST("", s.HandleCreateProject)
					gated.PUT("/:projectID", s.HandleUpdateProject)
					gated.DELETE("/:projectID", s.HandleDeleteProject)
				}
			}
		}

		admin := api.Group("/admin")
		{
			admin.POST("/companies/:companyID/downgrade", s.HandleDowngradeCompany)
		}
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/opengov-ph/barangay/internal/audit"
	auditdomain "github.com/opengov-ph/barangay/internal/audit/domain"
	"github.com/opengov-ph/barangay/internal/auth"
	authdomain "github.com/opengov-ph/barangay/internal/auth/domain"
	"github.com/opengov-ph/barangay/internal/auth/session"
	"github.com/opengov-ph/barangay/internal/config"
	"github.com/opengov-ph/barangay/internal/event"
	eventdomain "github.com/opengov-ph/barangay/internal/event/domain"
	"github.com/opengov-ph/barangay/internal/household"
	householddomain "github.com/opengov-ph/barangay/internal/household/domain"
	"github.com/opengov-ph/barangay/internal/impex"
	"github.com/opengov-ph/barangay/internal/observability"
	obsmetrics "github.com/opengov-ph/barangay/internal/observability/metrics"
	"github.com/opengov-ph/barangay/internal/providers"
	"github.com/opengov-ph/barangay/internal/providers/email"
	"github.com/opengov-ph/barangay/internal/providers/pdf"
	"github.com/opengov-ph/barangay/internal/providers/storage"
	"github.com/opengov-ph/barangay/internal/request"
	requestdomain "github.com/opengov-ph/barangay/internal/request/domain"
	"github.com/opengov-ph/barangay/internal/resetcode"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	observability.Module,
	fx.Provide(registerGin),
	audit.Module,
	auth.Module,
	session.Module,
	providers.Module,
	resetcode.Module,
	impex.Module,
	request.Module,
	event.Module,
	household.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
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

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	authsvc      authdomain.Service
	sessions     *session.Manager
	auditSvc     auditdomain.Service
	requestSvc   requestdomain.Service
	eventSvc     eventdomain.Service
	householdSvc householddomain.Service
	resetCodes   *resetcode.Service
	impexSvc     *impex.Service
	emailer      email.Provider
	pdfs         pdf.Provider
	storage      storage.Provider
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Authsvc      authdomain.Service
	Sessions     *session.Manager
	AuditSvc     auditdomain.Service
	RequestSvc   requestdomain.Service
	EventSvc     eventdomain.Service
	HouseholdSvc householddomain.Service
	ResetCodes   *resetcode.Service
	ImpexSvc     *impex.Service
	Emailer      email.Provider
	PDFs         pdf.Provider
	Storage      storage.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("http.server"),
		genID:        p.GenID,
		authsvc:      p.Authsvc,
		sessions:     p.Sessions,
		auditSvc:     p.AuditSvc,
		requestSvc:   p.RequestSvc,
		eventSvc:     p.EventSvc,
		householdSvc: p.HouseholdSvc,
		resetCodes:   p.ResetCodes,
		impexSvc:     p.ImpexSvc,
		emailer:      p.Emailer,
		pdfs:         p.PDFs,
		storage:      p.Storage,
	}

	svc.registerAuthRoutes()
	svc.registerPublicRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.WebAuthRequired(), s.Me)
	auth.POST("/change-password", s.WebAuthRequired(), s.ChangePassword)
	auth.POST("/forgot", s.Forgot)
	auth.POST("/reset", s.ResetPassword)
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.POST("/requests", s.SubmitRequest)
	api.POST("/households", s.RegisterHousehold)
	api.GET("/events", s.ListPublicEvents)
	api.GET("/events/:id", s.GetPublicEvent)

	if s.cfg.StorageDir != "" {
		s.engine.Static("/storage", s.cfg.StorageDir)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.WebAuthRequired())

	// -------- Certificate requests --------
	admin.GET("/requests", s.ListRequests)
	admin.GET("/requests/:id", s.GetRequestByID)
	admin.PATCH("/requests/:id", s.UpdateRequest)
	admin.PATCH("/requests/:id/status", s.SetRequestStatus)
	admin.DELETE("/requests/:id", s.DeleteRequest)
	admin.GET("/requests/backup", s.ListRequestBackups)
	admin.POST("/requests/backup/restore", s.StepUpRequired(), s.RestoreRequests)
	admin.GET("/requests/:id/certificate", s.GenerateCertificate)

	// -------- Events --------
	admin.GET("/events", s.ListEvents)
	admin.POST("/events", s.CreateEvent)
	admin.GET("/events/:id", s.GetEventByID)
	admin.PATCH("/events/:id", s.UpdateEvent)
	admin.DELETE("/events/:id", s.DeleteEvent)
	admin.POST("/events/:id/image", s.UploadEventImage)
	admin.GET("/events/backup", s.ListEventBackups)
	admin.POST("/events/backup/restore", s.StepUpRequired(), s.RestoreEvents)

	// -------- Households (RBI) --------
	admin.GET("/households", s.ListHouseholds)
	admin.GET("/households/:id", s.GetHouseholdByID)
	admin.PATCH("/households/:id", s.UpdateHousehold)
	admin.PATCH("/households/:id/status", s.SetHouseholdStatus)
	admin.DELETE("/households/:id", s.DeleteHousehold)
	admin.GET("/households/backup", s.ListHouseholdBackups)
	admin.POST("/households/backup/restore", s.StepUpRequired(), s.RestoreHouseholds)

	// -------- Audit / data management --------
	admin.GET("/audit-logs", s.RequireRole(authdomain.RoleAdmin), s.ListAuditLogs)
	admin.GET("/export", s.RequireRole(authdomain.RoleAdmin), s.ExportData)
	admin.POST("/import", s.RequireRole(authdomain.RoleAdmin), s.StepUpRequired(), s.ImportData)
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"danceslot/internal/analytics"
	"danceslot/internal/auth"
	"danceslot/internal/availability"
	"danceslot/internal/booking"
	"danceslot/internal/calendar"
	"danceslot/internal/config"
	"danceslot/internal/pricing"
	"danceslot/internal/realtime"
	"danceslot/internal/session"
	"danceslot/internal/studio"
	"danceslot/internal/user"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	Studio       *studio.Handler
	Calendar     *calendar.Handler
	Availability *availability.Handler
	Session      *session.Handler
	Booking      *booking.Handler
	Pricing      *pricing.Handler
	Analytics    *analytics.Handler
	Realtime     *realtime.Handler
	User         *user.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New builds the router. tokens verifies bearer tokens; store names the
// active persistence backend and is reported by /health.
func New(cfg *config.Config, tokens *auth.Tokens, h Handlers, store string) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", Health(store))
	router.GET("/metrics", Metrics())
	router.GET("/ws/:table", auth.OptionalAuth(tokens), RealtimeAccessMiddleware(), h.Realtime.Stream)
	SetupSwagger(router)

	limited := router.Group("/")
	limited.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	authGroup := limited.Group("/auth")
	{
		authGroup.POST("/register", h.User.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	public := limited.Group("/")
	public.Use(auth.OptionalAuth(tokens))
	{
		public.GET("/trainers", h.Studio.ListTrainers)
		public.GET("/schedule/weekly", h.Studio.WeeklySchedule)
		public.GET("/calendar/limits", h.Calendar.GetLimits)
		public.GET("/availability", h.Availability.ResolveRange)
		public.GET("/availability/:date", h.Availability.ResolveDate)
		public.GET("/pricing", h.Pricing.ListActive)
		public.POST("/bookings", h.Booking.Submit)
		public.POST("/contact", h.Booking.SubmitContact)
	}

	me := limited.Group("/me")
	me.Use(auth.AuthMiddleware(tokens))
	{
		me.GET("/bookings", h.Booking.MyBookings)
		me.GET("/profile", h.User.Profile)
		me.PUT("/profile", h.User.UpdateProfile)
	}

	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(tokens), auth.RequireRole(auth.RoleAdmin))
	{
		admin.PUT("/calendar/limits", h.Calendar.SetLimits)

		admin.GET("/sessions", h.Session.ListSessions)
		admin.POST("/sessions", h.Session.CreateSession)
		admin.GET("/sessions/:id", h.Session.GetSession)
		admin.PATCH("/sessions/:id", h.Session.UpdateSession)
		admin.PATCH("/sessions/:id/active", h.Session.SetActive)
		admin.DELETE("/sessions/:id", h.Session.DeleteSession)

		admin.GET("/bookings", h.Booking.List)
		admin.GET("/bookings/board", h.Booking.Board)
		admin.GET("/bookings/stats", h.Booking.Stats)
		admin.PATCH("/bookings/:id/status", h.Booking.SetStatus)
		admin.DELETE("/bookings/:id", h.Booking.Delete)

		admin.GET("/pricing", h.Pricing.List)
		admin.PUT("/pricing", h.Pricing.Save)

		admin.GET("/analytics", h.Analytics.Report)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = []string{
		"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding",
		"Authorization", "Cache-Control", "X-Requested-With",
	}
	cfg.AllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

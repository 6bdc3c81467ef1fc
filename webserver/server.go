package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/config"
	"github.com/stayloop/booking-service/services"
)

// Server is the REST boundary. Domain decisions live in the services
// package; handlers parse, call and project.
type Server struct {
	cfg     *config.Config
	db      *gorm.DB
	logger  log.Logger
	svc     *services.Server
	router  *gin.Engine
	httpSrv *http.Server
	tokens  *TokenManager
}

func New(cfg *config.Config, database *gorm.DB, svc *services.Server, logger log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		cfg:    cfg,
		db:     database,
		logger: logger,
		svc:    svc,
		router: router,
		tokens: NewTokenManager(&cfg.Security),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = level.Error(s.logger).Log("msg", "panic recovered", "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	s.router.Use(s.requestLogger())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		_ = level.Info(s.logger).Log(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	// Public reads.
	api.GET("/properties", s.listProperties)
	api.GET("/properties/:id", s.getProperty)
	api.GET("/properties/:id/availability", s.propertyAvailability)
	api.GET("/properties/:id/reviews", s.listPropertyReviews)
	api.GET("/reviews", s.listReviews)
	api.GET("/reviews/:id", s.getReview)
	api.POST("/users", s.createUser)

	auth := api.Group("", s.authRequired())
	{
		auth.POST("/properties", s.createProperty)
		auth.PUT("/properties/:id", s.updateProperty)
		auth.DELETE("/properties/:id", s.deleteProperty)
		auth.POST("/properties/:id/reviews", s.createPropertyReview)
		auth.PUT("/reviews/:id", s.updateReview)
		auth.DELETE("/reviews/:id", s.deleteReview)

		auth.GET("/bookings", s.listBookings)
		auth.POST("/bookings", s.createBooking)
		auth.GET("/bookings/:id", s.getBooking)
		auth.PATCH("/bookings/:id", s.updateBooking)
		auth.DELETE("/bookings/:id", s.deleteBooking)
		auth.POST("/bookings/:id/confirm", s.confirmBooking)
		auth.POST("/bookings/:id/cancel", s.cancelBooking)
		auth.POST("/bookings/:id/complete", s.completeBooking)

		auth.GET("/users/me", s.currentUser)
		auth.PUT("/users/me", s.updateCurrentUser)
		auth.GET("/users/:id", s.getUser)
		auth.GET("/users/:id/properties", s.listUserProperties)
		auth.GET("/users/:id/bookings", s.listUserBookings)

		auth.GET("/messages", s.listMessages)
		auth.POST("/messages", s.sendMessage)
		auth.GET("/messages/:id", s.getMessage)
		auth.POST("/messages/:id/mark_read", s.markMessageRead)

		auth.GET("/notifications", s.listNotifications)
		auth.DELETE("/notifications/:id", s.deleteNotification)
		auth.POST("/notifications/:id/mark_read", s.markNotificationRead)
		auth.POST("/notifications/mark_all_read", s.markAllNotificationsRead)
		auth.GET("/notifications/unread_count", s.unreadNotificationCount)

		auth.GET("/payments", s.listPayments)
		auth.POST("/payments", s.createPayment)

		auth.POST("/promotions", s.adminRequired(), s.sendPromotion)
	}
}

func (s *Server) Start() error {
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

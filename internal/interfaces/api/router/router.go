package router

import (
	"fmt"
	"net/http"

	"organizer/internal/interfaces/api/handler"
	"organizer/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds the dependencies for the router.
type Config struct {
	ReminderHandler *handler.ReminderHandler
	LineHandler     *handler.LineHandler // nil when LINE delivery is disabled
	Logger          logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Line-Signature"},
		MaxAge:       300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	h := cfg.ReminderHandler
	e.POST("/reminders", h.Submit)
	e.GET("/reminders/:kind/:id", h.Lookup)
	e.DELETE("/reminders/:kind/:id", h.Cancel)
	e.POST("/festivals", h.ScheduleFestival)
	e.GET("/categories/:kind", h.GetCategory)
	e.PUT("/categories/:kind", h.SetCategory)
	e.GET("/permission", h.Permission)
	e.GET("/min-start-time", h.MinStartTime)
	e.POST("/start-time/validate", h.ValidateStartTime)

	// LINE Webhook Endpoint
	if cfg.LineHandler != nil {
		e.POST("/callback", cfg.LineHandler.HandleWebhook)
	}

	cfg.Logger.Info("Router initialized with routes.")
	return e
}

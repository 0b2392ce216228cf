package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/ticketing-engine/api"
	"github.com/mkravets/ticketing-engine/config"
	"github.com/mkravets/ticketing-engine/internal/service/booking"
	"github.com/mkravets/ticketing-engine/internal/service/events"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, eventSvc events.EventUseCase, bookingSvc booking.BookingUseCase) error {
	router := NewRouter(eventSvc, bookingSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the API handlers and the metrics endpoint.
func NewRouter(eventSvc events.EventUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.Default()

	v1 := router.Group("/api/v1")
	api.NewEventHandler(eventSvc).Register(v1.Group("/events"))
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// Package api runs the local harness server: it accepts posted S3 event
// batches, runs them through the processor, and exposes the prometheus
// counters. Production traffic arrives via the Lambda entry point instead.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/fhir-analytics/ingest-backend/internal/config"
	"github.com/fhir-analytics/ingest-backend/internal/logging"
	"github.com/fhir-analytics/ingest-backend/internal/processor"
)

func newRouter(orch *processor.Orchestrator) *echo.Echo {
	app := echo.New()
	app.HideBanner = true
	app.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem: "fhir_ingest",
		LabelFuncs: map[string]echoprometheus.LabelValueFunc{
			"url": func(c echo.Context, err error) string {
				return c.Path()
			},
		},
	}))
	app.Use(middleware.Logger())

	app.GET("/status", GetAppStatus)
	app.GET("/metrics", echoprometheus.NewHandler())
	app.POST("/api/fhir-analytics/v1/events", PostEvent(orch))
	return app
}

func StartAPIServer(orch *processor.Orchestrator) {
	log := logging.GetLogger()
	cfg := config.GetConfig()
	app := newRouter(orch)

	s := http.Server{
		Addr:              ":" + cfg.API_PORT, // local dev server
		Handler:           app,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeout) * time.Second,
	}
	if err := s.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

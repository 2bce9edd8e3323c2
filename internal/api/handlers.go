package api

import (
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/labstack/echo/v4"

	"github.com/fhir-analytics/ingest-backend/internal/processor"
)

func GetAppStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"api":    "fhir-ingest-backend",
		"status": "ok",
	})
}

// PostEvent runs a posted S3 event batch through the processor and mirrors
// the invocation result, using its status code as the HTTP status.
func PostEvent(orch *processor.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var event events.S3Event
		if err := c.Bind(&event); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "request body is not an S3 event: " + err.Error(),
			})
		}
		result, err := orch.HandleEvent(c.Request().Context(), event)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(result.StatusCode, result)
	}
}

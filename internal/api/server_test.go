package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhir-analytics/ingest-backend/internal/config"
	"github.com/fhir-analytics/ingest-backend/internal/metrics"
	"github.com/fhir-analytics/ingest-backend/internal/processor"
	"github.com/fhir-analytics/ingest-backend/internal/storage"
	"github.com/fhir-analytics/ingest-backend/internal/types"
)

func testRouter(store *storage.MemoryStore) http.Handler {
	cfg := &config.Config{
		SourceBucket: "fhir-lca-persist",
		TargetBucket: "fhir-ingest-analytics",
	}
	return newRouter(processor.New(store, metrics.Noop{}, cfg))
}

func TestGetStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	testRouter(storage.NewMemoryStore()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPostEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Seed("fhir-lca-persist", "inbound/bundle-001.json", []byte(`{
		"meta": {"source": "lca-persist", "responseTs": "2025-12-09T18:31:45Z"},
		"response": [{"statusCode": 404}]
	}`))

	event := `{"Records": [{"s3": {"bucket": {"name": "fhir-lca-persist"}, "object": {"key": "inbound/bundle-001.json"}}}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/fhir-analytics/v1/events", strings.NewReader(event))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	testRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result types.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Results, 1)
	assert.Equal(t, "success", result.Results[0].Status)
	assert.Equal(t, 1, result.Results[0].RecordsProcessed)
}

func TestPostEventPartialFailureIs207(t *testing.T) {
	store := storage.NewMemoryStore()

	event := `{"Records": [{"s3": {"bucket": {"name": "fhir-lca-persist"}, "object": {"key": "missing.json"}}}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/fhir-analytics/v1/events", strings.NewReader(event))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	testRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
}

func TestPostEventRejectsGarbage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/fhir-analytics/v1/events", strings.NewReader("not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	testRouter(storage.NewMemoryStore()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

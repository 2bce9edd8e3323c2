package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fhir-analytics/ingest-backend/internal/config"
)

var log *logrus.Logger = logrus.New()

func InitLogger() {
	cfg := config.GetConfig()
	var logLevel logrus.Level

	switch cfg.LogLevel {
	case "DEBUG":
		logLevel = logrus.DebugLevel
	case "ERROR":
		logLevel = logrus.ErrorLevel
	default:
		logLevel = logrus.InfoLevel
	}

	log.Level = logLevel
	log.Out = os.Stdout
	log.ReportCaller = true
}

func GetLogger() *logrus.Logger {
	return log
}

// WithRecord returns an entry carrying the identifiers of the record being
// processed, so every log line of one record is correlatable.
func WithRecord(requestID string, bucket string, key string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"request_id": requestID,
		"bucket":     bucket,
		"key":        key,
	})
}

package main

import (
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/fhir-analytics/ingest-backend/internal/config"
	"github.com/fhir-analytics/ingest-backend/internal/logging"
	"github.com/fhir-analytics/ingest-backend/internal/processor"
)

func main() {
	logging.InitLogger()
	config.GetConfig()
	orch, err := processor.NewFromConfig()
	if err != nil {
		logging.GetLogger().Errorf("unable to initialize handler: %v", err)
		os.Exit(1)
	}
	awslambda.Start(orch.HandleEvent)
}

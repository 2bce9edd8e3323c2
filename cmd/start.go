package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/spf13/cobra"

	"github.com/fhir-analytics/ingest-backend/internal/api"
	"github.com/fhir-analytics/ingest-backend/internal/config"
	ingestkafka "github.com/fhir-analytics/ingest-backend/internal/kafka"
	"github.com/fhir-analytics/ingest-backend/internal/logging"
	"github.com/fhir-analytics/ingest-backend/internal/processor"
)

var startCmd = &cobra.Command{Use: "start", Short: "Use to start fhir-ingest services"}

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "starts the lambda event handler",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("starting fhir-ingest lambda handler")
		orch, err := processor.NewFromConfig()
		if err != nil {
			logging.GetLogger().Errorf("unable to initialize handler: %v", err)
			os.Exit(1)
		}
		awslambda.Start(orch.HandleEvent)
	},
}

var consumerCmd = &cobra.Command{
	Use:   "consumer",
	Short: "starts the kafka event consumer",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("starting fhir-ingest kafka consumer")
		log := logging.GetLogger()
		cfg := config.GetConfig()
		orch, err := processor.NewFromConfig()
		if err != nil {
			log.Errorf("unable to initialize handler: %v", err)
			os.Exit(1)
		}
		ingestkafka.StartConsumer(cfg.EventsTopic, func(msg *kafka.Message) {
			if !json.Valid(msg.Value) {
				log.Errorf("received message on %s is not valid JSON, skipping", cfg.EventsTopic)
				return
			}
			var event events.S3Event
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Errorf("unable to decode S3 event from message: %v", err)
				return
			}
			result, err := orch.HandleEvent(context.Background(), event)
			if err != nil {
				log.Errorf("event handling failed: %v", err)
				return
			}
			log.Infof("%s (status %d)", result.Message, result.StatusCode)
		})
	},
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "starts the fhir-ingest api server",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("starting fhir-ingest api server")
		orch, err := processor.NewFromConfig()
		if err != nil {
			logging.GetLogger().Errorf("unable to initialize handler: %v", err)
			os.Exit(1)
		}
		api.StartAPIServer(orch)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.AddCommand(lambdaCmd)
	startCmd.AddCommand(consumerCmd)
	startCmd.AddCommand(apiCmd)
}

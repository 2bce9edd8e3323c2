package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/fhir-analytics/ingest-backend/internal/faults"
)

type Config struct {
	//Application config
	LogLevel string `mapstructure:"LogLevel"`

	// Bucket config - both required, absence is a fatal configuration fault
	SourceBucket string `mapstructure:"SOURCE_BUCKET"`
	TargetBucket string `mapstructure:"TARGET_BUCKET"`

	// AWS config
	AWSRegion           string `mapstructure:"AWS_REGION"`
	CloudWatchNamespace string `mapstructure:"CLOUDWATCH_NAMESPACE"`
	MetricsEnabled      bool   `mapstructure:"METRICS_ENABLED"`

	// Kafka configs (start consumer mode)
	KafkaBootstrapServers string `mapstructure:"KAFKA_BOOTSTRAP_SERVERS"`
	KafkaConsumerGroupId  string `mapstructure:"KAFKA_CONSUMER_GROUP_ID"`
	KafkaAutoCommit       bool   `mapstructure:"KAFKA_AUTO_COMMIT"`
	EventsTopic           string `mapstructure:"EVENTS_TOPIC"`
	KafkaUsername         string
	KafkaPassword         string
	KafkaSASLMechanism    string
	KafkaSecurityProtocol string
	KafkaCA               string

	// Local harness API config
	API_PORT          string `mapstructure:"API_PORT"`
	ReadHeaderTimeout int    `mapstructure:"READ_HEADER_TIMEOUT"`
}

var cfg *Config = nil

func initConfig() {
	viper.AutomaticEnv()

	viper.SetDefault("LogLevel", "INFO")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("CLOUDWATCH_NAMESPACE", "FhirIngestAnalytics")
	viper.SetDefault("METRICS_ENABLED", true)

	viper.SetDefault("KAFKA_BOOTSTRAP_SERVERS", "localhost:29092")
	viper.SetDefault("KAFKA_CONSUMER_GROUP_ID", "fhir-ingest")
	viper.SetDefault("KAFKA_AUTO_COMMIT", false)
	viper.SetDefault("EVENTS_TOPIC", "fhir.ingest.events")

	viper.SetDefault("API_PORT", "8000")
	viper.SetDefault("READ_HEADER_TIMEOUT", 5)

	// Hack till viper issue get fix - https://github.com/spf13/viper/issues/761
	envKeysMap := &map[string]interface{}{}
	if err := mapstructure.Decode(cfg, &envKeysMap); err != nil {
		fmt.Println(err)
	}
	for k := range *envKeysMap {
		if bindErr := viper.BindEnv(k); bindErr != nil {
			fmt.Println(bindErr)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Println("Can not unmarshal config. Exiting.. ", err)
		os.Exit(1)
	}
}

func GetConfig() *Config {
	if cfg == nil {
		initConfig()
	}
	return cfg
}

// Validate checks the required settings. A missing bucket is fatal to the
// whole invocation, before any record is processed.
func (c *Config) Validate() error {
	if c.SourceBucket == "" {
		return faults.New(faults.Configuration, "required setting SOURCE_BUCKET is not set")
	}
	if c.TargetBucket == "" {
		return faults.New(faults.Configuration, "required setting TARGET_BUCKET is not set")
	}
	return nil
}

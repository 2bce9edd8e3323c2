package metrics

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"

	"github.com/fhir-analytics/ingest-backend/internal/config"
	"github.com/fhir-analytics/ingest-backend/internal/logging"
)

type CloudWatchSink struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
}

func NewCloudWatchSink() (*CloudWatchSink, error) {
	cfg := config.GetConfig()
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
	if err != nil {
		return nil, fmt.Errorf("unable to create AWS session: %w", err)
	}
	return &CloudWatchSink{
		client:    cloudwatch.New(sess),
		namespace: cfg.CloudWatchNamespace,
	}, nil
}

func (s *CloudWatchSink) Count(name string, value float64, dimensions map[string]string) {
	s.publish(name, value, cloudwatch.StandardUnitCount, dimensions)
}

func (s *CloudWatchSink) Duration(name string, d time.Duration, dimensions map[string]string) {
	s.publish(name, float64(d.Milliseconds()), cloudwatch.StandardUnitMilliseconds, dimensions)
}

func (s *CloudWatchSink) publish(name string, value float64, unit string, dimensions map[string]string) {
	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
		Timestamp:  aws.Time(time.Now().UTC()),
	}
	for k, v := range dimensions {
		datum.Dimensions = append(datum.Dimensions, &cloudwatch.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	_, err := s.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(s.namespace),
		MetricData: []*cloudwatch.MetricDatum{datum},
	})
	if err != nil {
		logging.GetLogger().Warnf("unable to publish metric %s: %v", name, err)
	}
}

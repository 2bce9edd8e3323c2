package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

type fakeCloudWatch struct {
	cloudwatchiface.CloudWatchAPI
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(in *cloudwatch.PutMetricDataInput) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCountPublishesDatum(t *testing.T) {
	fake := &fakeCloudWatch{}
	sink := &CloudWatchSink{client: fake, namespace: "FhirIngestAnalytics"}

	sink.Count(FilesProcessed, 3, map[string]string{"Source": "lca-persist"})

	if len(fake.inputs) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(fake.inputs))
	}
	in := fake.inputs[0]
	if *in.Namespace != "FhirIngestAnalytics" {
		t.Errorf("namespace = %s", *in.Namespace)
	}
	datum := in.MetricData[0]
	if *datum.MetricName != FilesProcessed || *datum.Value != 3 {
		t.Errorf("datum = %v", datum)
	}
	if len(datum.Dimensions) != 1 || *datum.Dimensions[0].Value != "lca-persist" {
		t.Errorf("dimensions = %v", datum.Dimensions)
	}
}

func TestPublishFailuresAreSwallowed(t *testing.T) {
	fake := &fakeCloudWatch{err: errors.New("throttled")}
	sink := &CloudWatchSink{client: fake, namespace: "FhirIngestAnalytics"}

	// Must not panic or surface the error in any way.
	sink.Count(InvocationCount, 1, nil)
	sink.Duration(WriteDuration, 120*time.Millisecond, nil)

	if len(fake.inputs) != 2 {
		t.Fatalf("expected 2 publish attempts, got %d", len(fake.inputs))
	}
}

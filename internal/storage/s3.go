package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/fhir-analytics/ingest-backend/internal/config"
)

type S3Store struct {
	client s3iface.S3API
}

func NewS3Store() (*S3Store, error) {
	cfg := config.GetConfig()
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
	if err != nil {
		return nil, fmt.Errorf("unable to create AWS session: %w", err)
	}
	return &S3Store{client: s3.New(sess)}, nil
}

func (s *S3Store) Get(bucket string, key string) ([]byte, error) {
	out, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Store) Exists(bucket string, key string) (bool, error) {
	_, err := s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *S3Store) Put(bucket string, key string, body []byte) error {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	return err
}

// isNotFound detects the definitive missing-object signal from HeadObject,
// which surfaces as a 404 request failure rather than a typed error.
func isNotFound(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		if reqErr.StatusCode() == http.StatusNotFound {
			return true
		}
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

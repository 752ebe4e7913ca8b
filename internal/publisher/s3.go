package publisher

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/common"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink archives every report as <prefix>/<strategy>/<unix time>.json.
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Sink(ctx context.Context, cfg config.S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("no S3 bucket configured")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
			}, nil
		})))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Sink(client, cfg.Bucket, cfg.Prefix, time.Now), nil
}

func newS3Sink(client objectPutter, bucket, prefix string, now func() time.Time) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix, now: now}
}

func (s *S3Sink) Name() string {
	return "s3"
}

func (s *S3Sink) objectKey(report *common.AggregateReport) string {
	return path.Join(s.prefix, report.Name, fmt.Sprintf("%d.json", s.now().Unix()))
}

func (s *S3Sink) Publish(ctx context.Context, report *common.AggregateReport) error {
	body, err := report.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}
	key := s.objectKey(report)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upload report to s3://%s/%s", s.bucket, key)
	}
	return nil
}

func (s *S3Sink) Close() error {
	return nil
}

package utils

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client
var datasetBucket string

// InitDatasetBucket configures the S3 client for the dataset snapshot
// bucket. S3_ENDPOINT allows S3-compatible stores (R2, MinIO); when the
// static key envs are unset the default AWS credential chain applies.
func InitDatasetBucket() error {
	datasetBucket = os.Getenv("DATASET_S3_BUCKET")
	if datasetBucket == "" {
		return fmt.Errorf("DATASET_S3_BUCKET environment variable not set")
	}
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKeyID := os.Getenv("S3_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("S3_ACCESS_KEY_SECRET")
	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)))
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// DownloadDatasetObject fetches one object from the dataset bucket into
// destPath.
func DownloadDatasetObject(ctx context.Context, key, destPath string) error {
	if s3Client == nil {
		return fmt.Errorf("S3 client not initialized")
	}

	out, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(datasetBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch %s from bucket: %w", key, err)
	}
	defer out.Body.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, out.Body)
	return err
}

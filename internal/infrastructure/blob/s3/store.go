// Package s3 stores business images in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds construction parameters. Credentials come from the default
// chain unless set explicitly.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; enables a custom endpoint such as MinIO
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// Store implements ports.ImageStore on a single bucket.
type Store struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL *url.URL
}

// New creates an S3 image store from cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "ap-southeast-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(staticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newStore(client, cfg.Bucket, region, cfg.Endpoint), nil
}

func newStore(client *s3.Client, bucket, region, endpoint string) *Store {
	var base *url.URL
	if endpoint != "" {
		if u, err := url.Parse(endpoint); err == nil {
			base = u
		}
	}
	return &Store{client: client, bucket: bucket, region: region, baseURL: base}
}

// Upload writes r to key, replacing any existing object, and returns the
// object's URL.
func (s *Store) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	input := &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *Store) objectURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.baseURL != nil {
		u := *s.baseURL
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + s.bucket + "/" + key
		return u.String()
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lookbook/internal/imageref"
)

// S3Config describes an S3 or S3-compatible bucket.
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads images with PutObject and returns their public URL.
type S3Publisher struct {
	client  putObjectAPI
	bucket  string
	region  string
	baseURL string
	prefix  string
}

// NewS3Publisher loads the default AWS credential chain for cfg.Region.
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("storage: s3 bucket and region are required")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})
	return newS3Publisher(client, cfg), nil
}

func newS3Publisher(client putObjectAPI, cfg S3Config) *S3Publisher {
	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" && cfg.Endpoint != "" && cfg.ForcePathStyle {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}
	return &S3Publisher{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: publicURL,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
	}
}

func (p *S3Publisher) Publish(ctx context.Context, ref imageref.Reference) (imageref.Reference, error) {
	if !ref.IsInline() {
		return ref, nil
	}
	data, err := ref.Bytes()
	if err != nil {
		return imageref.Reference{}, fmt.Errorf("storage: decode image: %w", err)
	}
	contentType, err := resolveContentType(data, ref.MIMEType())
	if err != nil {
		return imageref.Reference{}, err
	}
	key := objectKey(p.prefix, contentType)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return imageref.Reference{}, fmt.Errorf("put object: %w", err)
	}
	return imageref.FromURL(p.objectURL(key)), nil
}

func (p *S3Publisher) objectURL(key string) string {
	if p.baseURL != "" {
		return fmt.Sprintf("%s/%s", p.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}

var _ Publisher = (*S3Publisher)(nil)

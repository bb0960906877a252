package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/xieumar/HNG-Framez/internal/apperr"
)

// S3Store implements ObjectStore on a single bucket. Upload tickets are
// presigned PUTs; object ids are the generated keys.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	region    string
	uploadTTL time.Duration
}

type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UploadTTL time.Duration
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	ttl := cfg.UploadTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		uploadTTL: ttl,
	}, nil
}

func (s *S3Store) CreateUploadTicket(ctx context.Context) (UploadTicket, error) {
	objectID := fmt.Sprintf("uploads/%s", uuid.New().String())

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectID),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return UploadTicket{}, apperr.Wrap(apperr.StorageTransient, "presign upload", err)
	}

	return UploadTicket{UploadURL: req.URL, ObjectID: objectID}, nil
}

func (s *S3Store) Resolve(ctx context.Context, objectID string) (string, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", apperr.Wrap(apperr.StorageTransient, "resolve object", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectID), nil
}

func (s *S3Store) Delete(ctx context.Context, objectID string) error {
	// DeleteObject succeeds on missing keys, which is exactly the idempotency
	// the cascade path needs.
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		return apperr.Wrap(apperr.StorageTransient, "delete object", err)
	}
	return nil
}

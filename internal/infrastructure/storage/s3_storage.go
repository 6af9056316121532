package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/upload"
	"github.com/heavybid/auction-media/internal/infrastructure/metrics"
)

var errStorageDisabled = errors.New("storage backend is not configured; set MEDIA_S3_* to enable uploads")

// S3Storage keeps media objects in S3-compatible storage under a fixed
// key prefix.
type S3Storage struct {
	bucket   string
	prefix   string
	client   *s3.Client
	log      zerolog.Logger
	disabled bool
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket: cfg.S3Bucket,
		prefix: strings.TrimPrefix(cfg.S3Prefix, "/"),
		log:    logger,
	}

	if storage.bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
		logger.Warn().Msg("MEDIA_S3_BUCKET or credentials are not set; uploads will be disabled until configured")
		storage.disabled = true
		return storage, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	storage.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return storage, nil
}

func (s *S3Storage) ensureEnabled() error {
	if s.disabled {
		return errStorageDisabled
	}
	return nil
}

// UploadBatch stores each file of the batch as its own object.
func (s *S3Storage) UploadBatch(ctx context.Context, files []upload.FileUpload) ([]upload.StoredObject, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	stored := make([]upload.StoredObject, 0, len(files))
	for i := range files {
		key := s.objectKey(files[i].Name)
		timer := metrics.StorageTimer("put")
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(files[i].Content),
			ContentType: aws.String(files[i].MimeType),
		})
		timer(err)
		if err != nil {
			return nil, fmt.Errorf("put %s: %w", files[i].Name, err)
		}
		stored = append(stored, upload.StoredObject{
			Key:          key,
			OriginalName: files[i].Name,
			Size:         int64(len(files[i].Content)),
			MimeType:     files[i].MimeType,
		})
	}
	return stored, nil
}

// List walks all objects under the configured prefix.
func (s *S3Storage) List(ctx context.Context) ([]upload.ObjectInfo, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	var objects []upload.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		timer := metrics.StorageTimer("list")
		page, err := paginator.NextPage(ctx)
		timer(err)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, upload.ObjectInfo{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
	}
	return objects, nil
}

// Exists probes one object with a HeadObject request.
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	if err := s.ensureEnabled(); err != nil {
		return false, err
	}
	timer := metrics.StorageTimer("head")
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	timer(err)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes one object.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	timer := metrics.StorageTimer("delete")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	timer(err)
	return err
}

// Health performs a HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	if s.disabled {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func (s *S3Storage) objectKey(name string) string {
	return s.prefix + uuid.NewString() + strings.ToLower(path.Ext(name))
}

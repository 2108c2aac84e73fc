package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageBytes bounds a single decoded upload.
const MaxImageBytes = 10 << 20

// ObjectAPI is the subset of the S3 client used by S3Service.
type ObjectAPI interface {
	manager.UploadAPIClient
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options conveys upload destination metadata.
type S3Options struct {
	Bucket    string
	KeyPrefix string
	Region    string
	// PublicBaseURL is prepended to object keys; defaults to the virtual-hosted bucket URL.
	PublicBaseURL string
}

// S3Service keeps post and profile images in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   ObjectAPI
	uploader *manager.Uploader
	opts     S3Options
}

func NewS3Service(client ObjectAPI, opts S3Options) (*S3Service, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	if opts.PublicBaseURL == "" {
		region := opts.Region
		if region == "" {
			region = "us-east-1"
		}
		opts.PublicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, region)
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")

	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		opts:     opts,
	}, nil
}

func (s *S3Service) UploadImage(ctx context.Context, payload string) (string, error) {
	data, err := decodeImage(payload)
	if err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrInvalidImage, mtype.String())
	}

	key := path.Join(s.opts.KeyPrefix, uuid.NewString()+mtype.Extension())
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mtype.String()),
	}); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	return s.opts.PublicBaseURL + "/" + key, nil
}

func (s *S3Service) DeleteImage(ctx context.Context, url string) error {
	key, err := s.keyFromURL(url)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete image %s: %w", key, err)
	}
	return nil
}

func (s *S3Service) keyFromURL(url string) (string, error) {
	prefix := s.opts.PublicBaseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("image url %q is not served from %s", url, s.opts.PublicBaseURL)
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", fmt.Errorf("image url %q has no object key", url)
	}
	return key, nil
}

var _ Service = (*S3Service)(nil)

// decodeImage accepts either a data URL ("data:image/png;base64,...") or bare base64.
func decodeImage(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("%w: unsupported data url", ErrInvalidImage)
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}

package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned by Disabled when no media bucket is set up.
	ErrNotConfigured = errors.New("media storage not configured")
	// ErrInvalidImage is returned when an upload payload is not a decodable image.
	ErrInvalidImage = errors.New("invalid image")
)

// Service stores user-supplied images on a remote media host.
type Service interface {
	// UploadImage stores a base64 payload (optionally a data URL) and returns its public URL.
	UploadImage(ctx context.Context, payload string) (string, error)
	// DeleteImage destroys the object behind a URL previously returned by UploadImage.
	DeleteImage(ctx context.Context, url string) error
}

// Disabled rejects every upload. It lets the server run without a media bucket.
type Disabled struct{}

func (Disabled) UploadImage(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) DeleteImage(context.Context, string) error {
	return nil
}

var _ Service = Disabled{}

// Package storage stores binary uploads such as profile photos in S3-compatible
// object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrRejected marks uploads refused before reaching the object store.
var ErrRejected = errors.New("upload rejected")

// PresignedURL is a time-limited link to a stored object.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageService is what domain modules need from the object store.
type StorageService interface {
	// UploadFile stores reader under a unique key below folder and returns the key.
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// GenerateDownloadURL creates a presigned GET link for fileKey.
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)

	DeleteObject(ctx context.Context, bucket, fileKey string) error

	EnsureBucketExists(ctx context.Context, bucket string) error

	// ValidateUpload checks content type and size before any bytes are sent.
	// Failures wrap ErrRejected.
	ValidateUpload(contentType string, sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}

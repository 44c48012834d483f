package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/google/uuid"
)

// ObjectStorage captures the operations prescription uploads need.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	// ObjectURL returns a URL the client can fetch the object from
	ObjectURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// New picks the backend configured by STORAGE_DRIVER
func New(cfg config.StorageConfig, uploadDir string) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStorage(uploadDir, "/uploads")
	case "minio", "s3":
		return NewMinioClient(MinioConfig{
			Endpoint:   cfg.Endpoint,
			AccessKey:  cfg.AccessKey,
			SecretKey:  cfg.SecretKey,
			Bucket:     cfg.Bucket,
			Region:     cfg.Region,
			UseSSL:     cfg.UseSSL,
			PresignTTL: cfg.PresignTTL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

var allowedImageTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ExtensionFor returns the file extension for an accepted upload content type
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// PrescriptionKey builds a unique object key grouped by customer
func PrescriptionKey(customerID, ext string) string {
	return path.Join("prescriptions", customerID, uuid.NewString()+ext)
}

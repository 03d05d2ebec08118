// Package storage uploads validation photos to a GCS bucket. Uploads are
// best-effort: validation proceeds whether or not the photo lands.
package storage

import (
	"context"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

type Uploader struct {
	client *gcs.Client
	bucket string
	logger *zap.Logger
}

func NewUploader(ctx context.Context, bucket string, logger *zap.Logger) (*Uploader, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Uploader{client: client, bucket: bucket, logger: logger}, nil
}

// UploadValidationImage stores the photo under the event code and returns
// its public URL, or "" when the upload fails.
func (u *Uploader) UploadValidationImage(ctx context.Context, eventCode string, image []byte) string {
	if u == nil || len(image) == 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	object := fmt.Sprintf("validations/%s.jpg", eventCode)
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	if _, err := w.Write(image); err != nil {
		u.logger.Warn("validation image upload failed", zap.String("object", object), zap.Error(err))
		_ = w.Close()
		return ""
	}
	if err := w.Close(); err != nil {
		u.logger.Warn("validation image upload failed", zap.String("object", object), zap.Error(err))
		return ""
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, object)
}

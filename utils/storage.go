package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"devcourses/config"
	"devcourses/models"
)

// Storage uploads course media to the object-storage bucket. One client is
// created at startup and shared by the controllers.
type Storage struct {
	client *storage.Client
	bucket string
}

// NewStorage creates the object-storage client. If no credentials file is
// configured, application default credentials are used.
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	var client *storage.Client
	var err error
	if cfg.GCSCredsFile == "" {
		client, err = storage.NewClient(ctx)
	} else {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(cfg.GCSCredsFile))
	}
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &Storage{client: client, bucket: cfg.GCSBucket}, nil
}

// UploadBase64Image decodes a data-URI image payload
// ("data:image/png;base64,....") and stores it under a generated key.
func (s *Storage) UploadBase64Image(ctx context.Context, image string) (*models.MediaRef, error) {
	header, data, found := strings.Cut(image, ",")
	if !found {
		return nil, fmt.Errorf("malformed image payload")
	}

	// "data:image/png;base64" -> "png"
	ext := "bin"
	contentType := "application/octet-stream"
	if mime, ok := strings.CutPrefix(strings.TrimSuffix(header, ";base64"), "data:"); ok {
		contentType = mime
		if _, sub, ok := strings.Cut(mime, "/"); ok {
			ext = sub
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}

	key := fmt.Sprintf("%s.%s", uuid.NewString(), ext)
	return s.Upload(ctx, key, contentType, bytes.NewReader(raw))
}

// Upload streams an object into the bucket under key.
func (s *Storage) Upload(ctx context.Context, key, contentType string, r io.Reader) (*models.MediaRef, error) {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // small objects, skip chunking
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &models.MediaRef{
		Bucket: s.bucket,
		Key:    key,
		URL:    fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key),
	}, nil
}

// Remove deletes an object from the bucket.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("STORAGE_BUCKET is not set")

// Store uploads listing photos to a Firebase storage bucket and returns
// token-authenticated download URLs.
type Store struct {
	client *storage.Client
	bucket string
}

func NewStore(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		return nil, ErrNotConfigured
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) UploadListingPhoto(ctx context.Context, listingID uint64, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	token := uuid.NewString()
	objectPath := fmt.Sprintf("listings/%d/%s", listingID, uuid.NewString())
	obj := s.client.Bucket(s.bucket).Object(objectPath)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	escapedPath := url.PathEscape(objectPath)
	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.bucket, escapedPath, token)
	return publicURL, nil
}

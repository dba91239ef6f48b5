package storage

import (
	"context"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"carrental-backend/internal/logger"
)

const downloadTokenMetadata = "firebaseStorageDownloadTokens"

// FirebaseStorage uploads documents to a Firebase Storage bucket and returns
// token-protected download URLs, the same URLs the Firebase client SDKs hand out.
type FirebaseStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStorage(bucket *gcs.BucketHandle, bucketName string) *FirebaseStorage {
	return &FirebaseStorage{bucket: bucket, bucketName: bucketName}
}

func (f *FirebaseStorage) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	token := uuid.NewString()

	logger.ExternalServiceCall("firebase-storage", "Upload", "key", key, "size", len(data))
	w := f.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenMetadata: token}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		logger.ExternalServiceResult("firebase-storage", "Upload", err, "key", key)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	err := w.Close()
	logger.ExternalServiceResult("firebase-storage", "Upload", err, "key", key)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return DownloadURL(f.bucketName, key, token), nil
}

func (f *FirebaseStorage) Delete(ctx context.Context, key string) error {
	err := f.bucket.Object(key).Delete(ctx)
	if err != nil && err != gcs.ErrObjectNotExist {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// DownloadURL builds the public URL of an object guarded by a download token.
func DownloadURL(bucketName, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucketName, url.PathEscape(key), url.QueryEscape(token))
}

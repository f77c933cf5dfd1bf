package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/storage"
)

var (
	gcsClient     *storage.Client
	gcsClientOnce sync.Once
	gcsClientErr  error
)

func gcsBucketName() string {
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		return bucket
	}
	return "slf-project-documents"
}

// getGCSClient lazily initializes the shared storage client. Credentials
// come from the environment (ADC).
func getGCSClient(ctx context.Context) (*storage.Client, error) {
	gcsClientOnce.Do(func() {
		gcsClient, gcsClientErr = storage.NewClient(ctx)
	})
	return gcsClient, gcsClientErr
}

// saveToGCS streams the upload into the configured bucket and returns
// the object path and public URL.
func saveToGCS(ctx context.Context, objectName string, src io.Reader, contentType string) (storagePath, url string, size int64, err error) {
	client, err := getGCSClient(ctx)
	if err != nil {
		return "", "", 0, fmt.Errorf("storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	bucket := gcsBucketName()
	obj := client.Bucket(bucket).Object(objectName)
	writer := obj.NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	size, err = io.Copy(writer, src)
	if err != nil {
		writer.Close()
		return "", "", 0, fmt.Errorf("write object: %w", err)
	}
	if err = writer.Close(); err != nil {
		return "", "", 0, fmt.Errorf("finalize object: %w", err)
	}

	url = fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectName)
	return fmt.Sprintf("gs://%s/%s", bucket, objectName), url, size, nil
}

package delivery

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"

	"vermux/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// toGCS streams the rendered video to a Google Cloud Storage object, using a
// service account key supplied (base64-encoded or raw JSON) with the job.
func toGCS(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	credentialsJSON := []byte(accessInfo["credentialsJSON"])
	if decoded, err := base64.StdEncoding.DecodeString(accessInfo["credentialsJSON"]); err == nil {
		credentialsJSON = decoded
	}
	bucketName := accessInfo["bucket"]
	objectName := path.Join(accessInfo["folder"], accessInfo["filename"])

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	obj := client.Bucket(bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)

	if _, err = io.Copy(wc, reader); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Infof("Delivered object '%s' to bucket '%s'", objectName, bucketName)
	return nil
}

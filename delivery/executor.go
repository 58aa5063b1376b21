package delivery

import (
	"context"
	"fmt"
	"io"
)

// Deliver ships a rendered artifact to one destination. accessInfo carries
// the backend credentials plus filename/folder routing; each backend reads
// its own keys.
func Deliver(ctx context.Context, backendType string, accessInfo map[string]string, reader io.Reader) error {
	switch backendType {
	case "directServe":
		if err := toDirectServe(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to deliver to direct serve: %w", err)
		}
	case "s3":
		if err := toS3(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to deliver to S3: %w", err)
		}
	case "gcs":
		if err := toGCS(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to deliver to GCS: %w", err)
		}
	case "sftp":
		if err := toSFTP(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to deliver to SFTP: %w", err)
		}
	default:
		return fmt.Errorf("unknown delivery backend: %s", backendType)
	}
	return nil
}

package delivery

import (
	"context"
	"fmt"
	"io"
	"path"

	"vermux/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// toS3 streams the rendered video to an S3 object, building its own client
// from the per-job credentials.
func toS3(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	creds := credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], "")
	bucket := accessInfo["bucket"]
	key := path.Join(accessInfo["folder"], accessInfo["filename"])

	s3Client := s3.New(s3.Options{
		Region:      accessInfo["region"],
		Credentials: creds,
	})

	uploader := manager.NewUploader(s3Client)

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}

	logger.Infof("Delivered object '%s' to bucket '%s'", key, bucket)
	return nil
}

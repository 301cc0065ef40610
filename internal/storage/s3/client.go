package s3

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/LDK/javascriv-api/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	emptyAWSSessionToken                     = ""
	deletePrefixBatchSize                    = 1000
	errFailedCreateAWSSessionFmt             = "failed to create AWS session: %w"
	errFailedGeneratePresignedUploadURLFmt   = "failed to generate presigned upload URL: %w"
	errFailedGeneratePresignedDownloadURLFmt = "failed to generate presigned download URL: %w"
	errFailedDeleteObjectFmt                 = "failed to delete object: %w"
	errFailedListObjectsFmt                  = "failed to list objects: %w"
	errFailedDeletePrefixObjectsFmt          = "failed to delete objects under prefix: %w"
)

// Client stores image attachments in a single bucket, keyed by project.
type Client struct {
	svc    *s3.S3
	bucket string
	prefix string
	expiry time.Duration
	urls   *urlCache
}

// NewClient uses static credentials when both keys are configured and the
// SDK's default provider chain otherwise.
func NewClient(cfg *config.S3Config, presignedURLExpiry time.Duration) (*Client, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, emptyAWSSessionToken)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return &Client{
		svc:    s3.New(sess),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		expiry: presignedURLExpiry,
		urls:   newURLCache(presignedURLExpiry / 2),
	}, nil
}

// AttachmentKey names the object holding a node's image. The nonce keeps
// replaced uploads from being served out of caches under the old key.
func (c *Client) AttachmentKey(projectID, fileID int64, nonce string) string {
	return path.Join(c.ProjectPrefix(projectID), strconv.FormatInt(fileID, 10), nonce)
}

// ProjectPrefix is the key prefix shared by all attachments of a project.
func (c *Client) ProjectPrefix(projectID int64) string {
	return path.Join(c.prefix, "projects", strconv.FormatInt(projectID, 10)) + "/"
}

func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error) {
	req, _ := c.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	req.SetContext(ctx)

	url, err := req.Presign(c.expiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf(errFailedGeneratePresignedUploadURLFmt, err)
	}

	return url, time.Now().Add(c.expiry), nil
}

// PresignDownload reuses a previous URL for the key while it has at least half
// its lifetime left.
func (c *Client) PresignDownload(ctx context.Context, key string) (string, time.Time, error) {
	if url, expires, ok := c.urls.get(key); ok {
		return url, expires, nil
	}

	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(c.expiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf(errFailedGeneratePresignedDownloadURLFmt, err)
	}

	expires := time.Now().Add(c.expiry)
	c.urls.set(key, url, expires)
	return url, expires, nil
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	c.urls.delete(key)
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, err)
	}

	return nil
}

// DeletePrefix removes every object under prefix, a page at a time.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	c.urls.deletePrefix(prefix)
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(deletePrefixBatchSize),
	}

	for {
		page, err := c.svc.ListObjectsV2WithContext(ctx, input)
		if err != nil {
			return fmt.Errorf(errFailedListObjectsFmt, err)
		}

		if len(page.Contents) > 0 {
			objects := make([]*s3.ObjectIdentifier, 0, len(page.Contents))
			for _, obj := range page.Contents {
				objects = append(objects, &s3.ObjectIdentifier{Key: obj.Key})
			}

			_, err := c.svc.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(c.bucket),
				Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return fmt.Errorf(errFailedDeletePrefixObjectsFmt, err)
			}
		}

		if !aws.BoolValue(page.IsTruncated) {
			return nil
		}
		input.ContinuationToken = page.NextContinuationToken
	}
}

package s3

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/LDK/javascriv-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(&config.S3Config{
		Bucket:          "javascriv-test",
		Prefix:          "attachments",
		Region:          "us-east-1",
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
	}, 15*time.Minute)
	require.NoError(t, err)
	return c
}

func TestAttachmentKey(t *testing.T) {
	c := newTestClient(t)

	assert.Equal(t, "attachments/projects/7/", c.ProjectPrefix(7))
	assert.Equal(t, "attachments/projects/7/42/abc", c.AttachmentKey(7, 42, "abc"))
}

func TestPresignUpload(t *testing.T) {
	c := newTestClient(t)

	raw, expires, err := c.PresignUpload(context.Background(), "attachments/projects/7/42/abc", "image/png")

	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Host, "javascriv-test")
	assert.Equal(t, "/attachments/projects/7/42/abc", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, time.Minute)
}

func TestPresignDownload(t *testing.T) {
	c := newTestClient(t)

	raw, _, err := c.PresignDownload(context.Background(), "attachments/projects/7/42/abc")

	require.NoError(t, err)
	assert.Contains(t, raw, "X-Amz-Signature=")
}

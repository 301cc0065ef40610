package projects

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentUploadURL(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, grace)
	cover := f.db.fileByPath(created.ID, "cover")

	first, err := f.svc.AttachmentUploadURL(context.Background(), cover.ID, grace, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Key, f.attachments.ProjectPrefix(created.ID)))
	assert.Contains(t, first.URL, first.Key)
	assert.Equal(t, first.Key, *f.db.files[cover.ID].Attachment)
	assert.Empty(t, f.attachments.deleted)

	second, err := f.svc.AttachmentUploadURL(context.Background(), cover.ID, ada, "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, []string{first.Key}, f.attachments.deleted)

	download, err := f.svc.AttachmentDownloadURL(context.Background(), cover.ID, grace)
	require.NoError(t, err)
	assert.Contains(t, download.URL, second.Key)
	assert.Empty(t, download.Key)
}

func TestAttachmentUploadURL_Errors(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	cover := f.db.fileByPath(created.ID, "cover")
	chapter := f.db.fileByPath(created.ID, "Part 1/Chapter 1")

	_, err := f.svc.AttachmentUploadURL(context.Background(), chapter.ID, ada, "image/png")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	_, err = f.svc.AttachmentUploadURL(context.Background(), cover.ID, ada, "text/html")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.svc.AttachmentUploadURL(context.Background(), cover.ID, grace, "image/png")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = f.svc.AttachmentDownloadURL(context.Background(), cover.ID, ada)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	f.attachments.failPresign = true
	_, err = f.svc.AttachmentUploadURL(context.Background(), cover.ID, ada, "image/png")
	assert.ErrorIs(t, err, errInjected)
	assert.Nil(t, f.db.files[cover.ID].Attachment)
}

func TestAttachments_Disabled(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	f.svc.attachments = nil
	cover := f.db.fileByPath(created.ID, "cover")

	_, err := f.svc.AttachmentUploadURL(context.Background(), cover.ID, ada, "image/png")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	_, err = f.svc.AttachmentDownloadURL(context.Background(), cover.ID, ada)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}

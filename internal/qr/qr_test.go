package qr

import (
	"context"
	"io"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	key         string
	contentType string
	data        []byte
}

func (f *fakeUploader) PutObject(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.key = key
	f.contentType = contentType
	f.data = data
	return nil
}

func (f *fakeUploader) ObjectURL(key string) string {
	return "https://assets.example.com/" + key
}

func TestGeneratePaymentLink(t *testing.T) {
	uploader := &fakeUploader{}
	gen := NewGenerator(uploader, "https://pay.troopvault.example.com")

	troopID := uuid.New()
	scoutID := uuid.New()

	link, err := gen.GeneratePaymentLink(context.Background(), troopID, scoutID, 2450)
	require.NoError(t, err)

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, "/pay", u.Path)
	assert.Equal(t, troopID.String(), u.Query().Get("troop"))
	assert.Equal(t, scoutID.String(), u.Query().Get("scout"))
	assert.Equal(t, "2450", u.Query().Get("amount"))

	assert.Equal(t, uploader.key, link.ImageKey)
	assert.Equal(t, "https://assets.example.com/"+uploader.key, link.ImageURL)
	assert.Equal(t, "image/png", uploader.contentType)

	bounds, err := decodeBounds(uploader.data)
	require.NoError(t, err)
	assert.Equal(t, canvasSize, bounds.Dx())
	assert.Equal(t, canvasSize, bounds.Dy())
}

func TestGeneratePaymentLinkBadBaseURL(t *testing.T) {
	gen := NewGenerator(&fakeUploader{}, "://not-a-url")

	_, err := gen.GeneratePaymentLink(context.Background(), uuid.New(), uuid.New(), 100)
	require.Error(t, err)
}

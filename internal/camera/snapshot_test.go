package camera

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	img.SetGray(0, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func serve(t *testing.T, status int, body []byte) *SnapshotCamera {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return NewSnapshotCamera(srv.URL, time.Second)
}

func TestCaptureReturnsFrame(t *testing.T) {
	data := jpegBytes(t, 8, 6)
	frame, err := serve(t, http.StatusOK, data).Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, frame.Data)
	assert.False(t, frame.CapturedAt.IsZero())
	assert.False(t, frame.Released())
}

func TestCaptureRejectsBadStatus(t *testing.T) {
	_, err := serve(t, http.StatusServiceUnavailable, []byte("busy")).Capture(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestCaptureRejectsEmptyBody(t *testing.T) {
	_, err := serve(t, http.StatusOK, nil).Capture(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty frame")
}

func TestCaptureUnreachableCamera(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewSnapshotCamera(url, time.Second).Capture(context.Background())
	assert.Error(t, err)
}

func TestNextDecodesJPEG(t *testing.T) {
	img, err := serve(t, http.StatusOK, jpegBytes(t, 8, 6)).Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}

func TestNextRejectsUndecodableFrame(t *testing.T) {
	_, err := serve(t, http.StatusOK, []byte("not a jpeg")).Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode frame")
}

func TestReleaseZeroesBuffer(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	frame := &Frame{Data: data}
	frame.Release()

	assert.True(t, frame.Released())
	assert.Nil(t, frame.Data)
	assert.Equal(t, []byte{0, 0, 0, 0}, data, "the shared backing array is wiped")

	frame.Release()
	assert.True(t, (*Frame)(nil).Released())
}

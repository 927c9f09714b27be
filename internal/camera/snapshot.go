// Package camera acquires frames from a network camera that serves JPEG snapshots over HTTP.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"
)

// Frame is one captured image. Release drops the buffer; callers must not retain Data afterwards.
type Frame struct {
	Data       []byte
	CapturedAt time.Time
	released   bool
}

func (f *Frame) Release() {
	if f == nil || f.released {
		return
	}
	for i := range f.Data {
		f.Data[i] = 0
	}
	f.Data = nil
	f.released = true
}

func (f *Frame) Released() bool {
	return f == nil || f.released
}

type SnapshotCamera struct {
	url    string
	client *http.Client
}

func NewSnapshotCamera(url string, timeout time.Duration) *SnapshotCamera {
	return &SnapshotCamera{url: url, client: &http.Client{Timeout: timeout}}
}

// Capture fetches exactly one JPEG frame.
func (c *SnapshotCamera) Capture(ctx context.Context) (*Frame, error) {
	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &Frame{Data: data, CapturedAt: time.Now().UTC()}, nil
}

// Next fetches and decodes the next frame for the motion loop.
func (c *SnapshotCamera) Next(ctx context.Context) (image.Image, error) {
	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

func (c *SnapshotCamera) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request: camera returned %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("snapshot request: empty frame")
	}
	return data, nil
}

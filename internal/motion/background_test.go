package motion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayFrame(w, h int, fill uint8, rect image.Rectangle, rectValue uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := fill
			if (image.Point{X: x, Y: y}).In(rect) {
				v = rectValue
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestBackgroundModelFindsBlob(t *testing.T) {
	m := NewBackgroundModel()
	m.BufferSize = 1
	m.BlurSize = 0
	m.Dilations = 0

	empty := grayFrame(120, 100, 10, image.Rectangle{}, 0)
	assert.Nil(t, m.Apply(empty), "first frame seeds the background")
	assert.Empty(t, m.Apply(empty))

	blob := image.Rect(20, 30, 70, 60) // 50x30 = 1500 px
	boxes := m.Apply(grayFrame(120, 100, 10, blob, 200))
	require.Len(t, boxes, 1)
	assert.Equal(t, Box{X: 20, Y: 30, W: 50, H: 30}, boxes[0])
}

func TestBackgroundModelIgnoresSmallBlobs(t *testing.T) {
	m := NewBackgroundModel()
	m.BufferSize = 1
	m.BlurSize = 0
	m.Dilations = 0

	m.Apply(grayFrame(120, 100, 10, image.Rectangle{}, 0))
	small := image.Rect(0, 0, 20, 20) // 400 px
	assert.Empty(t, m.Apply(grayFrame(120, 100, 10, small, 200)))
}

func TestBackgroundModelTemporalMeanDampensFlicker(t *testing.T) {
	m := NewBackgroundModel()
	m.BlurSize = 0
	m.Dilations = 0

	base := grayFrame(120, 100, 10, image.Rectangle{}, 0)
	for i := 0; i < FrameBufferSize; i++ {
		m.Apply(base)
	}
	// a single bright frame is averaged over the buffer: (4*10 + 100) / 5 = 28, diff 18 < 25
	flash := grayFrame(120, 100, 10, image.Rect(0, 0, 60, 60), 100)
	assert.Empty(t, m.Apply(flash))
}

func TestDilateGrowsMask(t *testing.T) {
	mask := make([]bool, 25)
	mask[12] = true // center of 5x5
	out := dilate(mask, 5, 5)
	count := 0
	for _, v := range out {
		if v {
			count++
		}
	}
	assert.Equal(t, 9, count)
}

func TestComponentsSeparatesRegions(t *testing.T) {
	w, h := 10, 4
	mask := make([]bool, w*h)
	for _, p := range []int{0, 1, 10, 11, 8, 9, 18, 19} {
		mask[p] = true
	}
	boxes := components(mask, w, h, 1)
	assert.ElementsMatch(t, []Box{{X: 0, Y: 0, W: 2, H: 2}, {X: 8, Y: 0, W: 2, H: 2}}, boxes)
}

func TestGaussianBlurKeepsFlatFrames(t *testing.T) {
	w, h := 30, 20
	flat := make([]uint8, w*h)
	for i := range flat {
		flat[i] = 77
	}
	for _, v := range gaussianBlur(flat, w, h, BlurKernelSize) {
		require.Equal(t, uint8(77), v)
	}
}

func TestGaussianBlurSpreadsSpeck(t *testing.T) {
	w, h := 41, 41
	gray := make([]uint8, w*h)
	gray[20*w+20] = 255
	out := gaussianBlur(gray, w, h, BlurKernelSize)

	assert.Less(t, out[20*w+20], uint8(DiffThreshold), "single pixel noise falls under the threshold")
	assert.Greater(t, out[20*w+20], out[20*w+25])
	assert.Equal(t, out[20*w+15], out[20*w+25], "kernel is symmetric")
}

func TestGaussianKernelIsNormalized(t *testing.T) {
	total := 0.0
	for _, v := range gaussianKernel(BlurKernelSize) {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestBackgroundModelBlurredBlob(t *testing.T) {
	m := NewBackgroundModel()
	m.BufferSize = 1

	m.Apply(grayFrame(160, 120, 10, image.Rectangle{}, 0))
	boxes := m.Apply(grayFrame(160, 120, 10, image.Rect(50, 30, 110, 80), 200))
	require.Len(t, boxes, 1)
	c := boxes[0].Center()
	assert.InDelta(t, 80, c.X, 2)
	assert.InDelta(t, 55, c.Y, 2)
}

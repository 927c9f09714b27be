package motion

import (
	"image"
	"image/color"
	"math"
)

// BlurKernelSize is the Gaussian kernel applied to each grayscale frame before subtraction.
const BlurKernelSize = 21

// BackgroundModel turns frames into foreground boxes: a temporal mean over the last few
// blurred grayscale frames is compared against a running-average background, thresholded, dilated
// and split into connected components.
type BackgroundModel struct {
	BufferSize int
	BlurSize   int // odd kernel width, values below 3 disable the blur
	Threshold  uint8
	Alpha      float64 // background learning rate
	Dilations  int
	MinArea    int

	w, h       int
	buffer     [][]uint8
	sum        []int
	background []float64
}

func NewBackgroundModel() *BackgroundModel {
	return &BackgroundModel{
		BufferSize: FrameBufferSize,
		BlurSize:   BlurKernelSize,
		Threshold:  DiffThreshold,
		Alpha:      0.05,
		Dilations:  2,
		MinArea:    MinContourArea,
	}
}

// Apply consumes one frame. The first frame only seeds the background and yields no boxes.
func (m *BackgroundModel) Apply(img image.Image) []Box {
	b := img.Bounds()
	if b.Dx() != m.w || b.Dy() != m.h {
		m.reset(b.Dx(), b.Dy())
	}

	gray := gaussianBlur(grayscale(img), m.w, m.h, m.BlurSize)
	m.push(gray)
	mean := m.mean()

	if m.background == nil {
		m.background = make([]float64, len(mean))
		for i, v := range mean {
			m.background[i] = float64(v)
		}
		return nil
	}

	mask := make([]bool, len(mean))
	for i, v := range mean {
		diff := float64(v) - m.background[i]
		if diff < 0 {
			diff = -diff
		}
		mask[i] = diff > float64(m.Threshold)
		m.background[i] += m.Alpha * (float64(v) - m.background[i])
	}
	for i := 0; i < m.Dilations; i++ {
		mask = dilate(mask, m.w, m.h)
	}
	return components(mask, m.w, m.h, m.MinArea)
}

func (m *BackgroundModel) reset(w, h int) {
	m.w, m.h = w, h
	m.buffer = nil
	m.sum = make([]int, w*h)
	m.background = nil
}

func (m *BackgroundModel) push(gray []uint8) {
	m.buffer = append(m.buffer, gray)
	for i, v := range gray {
		m.sum[i] += int(v)
	}
	if len(m.buffer) > m.BufferSize {
		old := m.buffer[0]
		m.buffer = m.buffer[1:]
		for i, v := range old {
			m.sum[i] -= int(v)
		}
	}
}

func (m *BackgroundModel) mean() []uint8 {
	n := len(m.buffer)
	out := make([]uint8, len(m.sum))
	for i, s := range m.sum {
		out[i] = uint8(s / n)
	}
	return out
}

func grayscale(img image.Image) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)

	switch src := img.(type) {
	case *image.YCbCr:
		// JPEG frames: luma is already the gray value
		for y := 0; y < h; y++ {
			row := src.YOffset(b.Min.X, b.Min.Y+y)
			copy(out[y*w:(y+1)*w], src.Y[row:row+w])
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out[y*w:(y+1)*w], src.Pix[row:row+w])
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out[y*w+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			}
		}
	}
	return out
}

// gaussianKernel returns normalized weights, sigma derived from size the way OpenCV does for sigma 0.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	k := make([]float64, size)
	total := 0.0
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		total += k[i]
	}
	for i := range k {
		k[i] /= total
	}
	return k
}

// gaussianBlur is a separable blur with clamped borders.
func gaussianBlur(gray []uint8, w, h, size int) []uint8 {
	if size < 3 {
		return gray
	}
	if size%2 == 0 {
		size++
	}
	k := gaussianKernel(size)
	half := size / 2

	tmp := make([]float64, len(gray))
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			acc := 0.0
			for i, weight := range k {
				sx := min(max(x+i-half, 0), w-1)
				acc += weight * float64(gray[row+sx])
			}
			tmp[row+x] = acc
		}
	}

	out := make([]uint8, len(gray))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for i, weight := range k {
				sy := min(max(y+i-half, 0), h-1)
				acc += weight * tmp[sy*w+x]
			}
			out[y*w+x] = uint8(math.Round(min(acc, 255)))
		}
	}
	return out
}

// dilate applies one pass of a 3x3 structuring element.
func dilate(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && nx < w && ny >= 0 && ny < h {
						out[ny*w+nx] = true
					}
				}
			}
		}
	}
	return out
}

// components returns the bounding boxes of 8-connected foreground regions of at least minArea pixels.
func components(mask []bool, w, h, minArea int) []Box {
	seen := make([]bool, len(mask))
	var boxes []Box
	stack := make([]int, 0, 64)

	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		minX, minY, maxX, maxY := w, h, -1, -1
		area := 0

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%w, p/w
			area++
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					q := ny*w + nx
					if mask[q] && !seen[q] {
						seen[q] = true
						stack = append(stack, q)
					}
				}
			}
		}
		if area >= minArea {
			boxes = append(boxes, Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1})
		}
	}
	return boxes
}

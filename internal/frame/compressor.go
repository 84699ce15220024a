package frame

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	defaultMaxWidth = 640
	defaultQuality  = 0.7
)

// Compressor bounds upload size by downscaling frames to a maximum width
// (aspect ratio preserved) and re-encoding as JPEG at a fixed quality.
type Compressor struct {
	maxWidth int
	quality  int
}

func NewCompressor(cfg CompressorConfig) *Compressor {
	maxWidth := cfg.MaxWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}
	quality := cfg.Quality
	if quality <= 0 || quality > 1 {
		quality = defaultQuality
	}
	return &Compressor{
		maxWidth: maxWidth,
		quality:  int(quality * 100),
	}
}

func (c *Compressor) Compress(streamID string, data []byte, timestamp int64) (*Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame data")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > c.maxWidth {
		scaled := image.NewRGBA(image.Rect(0, 0, c.maxWidth, max(height*c.maxWidth/width, 1)))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
		width = scaled.Bounds().Dx()
		height = scaled.Bounds().Dy()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}

	return &Frame{
		StreamID:  streamID,
		Timestamp: timestamp,
		Data:      buf.Bytes(),
		Width:     width,
		Height:    height,
	}, nil
}

package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // регистрирует декодер gif для фото профиля
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Processor строит миниатюры фото соискателей
type Processor struct {
	quality int // JPEG quality (1-100)
}

// Thumbnail - результат обработки
type Thumbnail struct {
	Data        []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// NewProcessor creates a new image processor
func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// Thumbnail вырезает центральный квадрат и масштабирует его до size x size.
// PNG остается PNG (прозрачность), остальное кодируется в JPEG.
func (p *Processor) Thumbnail(reader io.Reader, size int) (*Thumbnail, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %d", size)
	}

	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	src := centerSquare(img.Bounds())
	target := size
	// маленькие фото не растягиваем
	if src.Dx() < target {
		target = src.Dx()
	}

	dst := image.NewRGBA(image.Rect(0, 0, target, target))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)

	var buf bytes.Buffer
	thumb := &Thumbnail{Width: target, Height: target}
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		thumb.ContentType, thumb.Extension = "image/png", ".png"
	} else {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		thumb.ContentType, thumb.Extension = "image/jpeg", ".jpg"
	}

	thumb.Data = buf.Bytes()
	return thumb, nil
}

func centerSquare(b image.Rectangle) image.Rectangle {
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// GetImageDimensions returns the dimensions of an image
func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

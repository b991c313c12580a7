package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // декодер для аватаров в webp
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type ImageSize struct {
	Name   string
	Width  int
	Height int
}

var (
	// SizeThumbnail - превью аватара
	SizeThumbnail = ImageSize{Name: "thumbnail", Width: 150, Height: 150}
	SizeAvatar    = ImageSize{Name: "avatar", Width: 512, Height: 512}
)

// Result - закодированное изображение
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// ProcessImage декодирует, вписывает в size и кодирует обратно.
// format "" сохраняет исходный формат; webp перекодируется в jpeg.
func (p *Processor) ProcessImage(reader io.Reader, size ImageSize, format string) (*Result, error) {
	img, imgFormat, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := p.resize(img, size.Width, size.Height)

	if format == "" {
		format = imgFormat
	}

	var buf bytes.Buffer
	res := &Result{Width: resized.Bounds().Dx(), Height: resized.Bounds().Dy()}

	switch format {
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		res.ContentType, res.Ext = "image/png", ".png"
	case "jpeg", "jpg", "webp":
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		res.ContentType, res.Ext = "image/jpeg", ".jpg"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	res.Data = buf.Bytes()
	return res, nil
}

// Thumbnail - превью 150x150 в исходном формате
func (p *Processor) Thumbnail(data []byte) (*Result, error) {
	return p.ProcessImage(bytes.NewReader(data), SizeThumbnail, "")
}

// resize вписывает изображение в рамку с сохранением пропорций.
// Маленькие изображения не растягиваются.
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	ratio := float64(width) / float64(height)
	newWidth, newHeight := maxWidth, maxHeight
	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func IsValidImage(reader io.Reader) bool {
	_, _, err := image.DecodeConfig(reader)
	return err == nil
}

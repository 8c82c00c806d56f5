package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"
	"strings"

	"dishswap/internal/config"
	"dishswap/internal/featureflags"
	"dishswap/internal/models"
	"dishswap/internal/observability"

	"github.com/chai2010/webp"
	"go.opentelemetry.io/otel/attribute"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxWidth  = 1200
	DefaultImageMaxPixels = 40_000_000
	JPEGQuality           = 82
	WebPQuality           = 70
)

// ProcessedImage is a normalized recipe image ready to be stored.
type ProcessedImage struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

type ImageService struct {
	maxWidth  int
	maxPixels int
	flags     *featureflags.Manager
}

func NewImageService(cfg *config.Config, flags *featureflags.Manager) *ImageService {
	maxWidth, maxPixels := DefaultImageMaxWidth, DefaultImageMaxPixels
	if cfg != nil && cfg.ImageMaxWidth > 0 {
		maxWidth = cfg.ImageMaxWidth
	}
	if cfg != nil && cfg.ImageMaxPixels > 0 {
		maxPixels = cfg.ImageMaxPixels
	}
	return &ImageService{maxWidth: maxWidth, maxPixels: maxPixels, flags: flags}
}

// Process decodes an uploaded image, scales it down to the configured width and
// re-encodes it as JPEG, or WebP when the webp_images flag is on for userID.
func (s *ImageService) Process(ctx context.Context, userID string, content []byte) (_ *ProcessedImage, err error) {
	_, span := observability.StartServiceSpan(ctx, "ImageService", "Process",
		attribute.Int("image.input_bytes", len(content)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return nil, models.NewUnsupportedMediaTypeError("Only JPEG, PNG, GIF and WebP images are allowed")
	}

	// Decoded size is bounded by the header dimensions, not the upload size.
	header, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	span.SetAttributes(
		attribute.Int("image.width", header.Width),
		attribute.Int("image.height", header.Height),
	)
	if int64(header.Width)*int64(header.Height) > int64(s.maxPixels) {
		return nil, models.NewPayloadTooLargeError("Image dimensions are too large")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	span.SetAttributes(attribute.String("image.format", format))

	scaled := resizeToWidth(decoded, s.maxWidth)
	b := scaled.Bounds()
	out := &ProcessedImage{Width: b.Dx(), Height: b.Dy()}

	if s.flags.Enabled(featureflags.WebPImages, userID) {
		out.Data, err = encodeWebP(scaled, WebPQuality)
		out.MimeType = "image/webp"
	} else {
		out.Data, err = encodeJPEG(flatten(scaled), JPEGQuality)
		out.MimeType = "image/jpeg"
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func resizeToWidth(src image.Image, maxWidth int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || w <= maxWidth {
		return src
	}

	newH := int(float64(h) * float64(maxWidth) / float64(w))
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// flatten composites src over white so transparent pixels survive JPEG encoding.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

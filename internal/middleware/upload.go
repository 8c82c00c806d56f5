package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"dishswap/internal/models"
	"dishswap/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const uploadLocalsKey = "upload"

// Upload is an image file buffered in memory by SingleImageUpload.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType reports whether a sniffed content type is accepted for uploads.
func IsAllowedImageType(contentType string) bool {
	return allowedImageTypes[contentType]
}

// SingleImageUpload buffers at most one multipart file, which must arrive in field,
// must not exceed maxBytes and must sniff as an image. Non-multipart requests pass through.
func SingleImageUpload(field string, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
			return c.Next()
		}

		form, err := c.MultipartForm()
		if err != nil {
			observability.UploadsRejected.WithLabelValues("malformed").Inc()
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid multipart form"))
		}

		total := 0
		for _, files := range form.File {
			total += len(files)
		}
		if total == 0 {
			return c.Next()
		}
		if total > 1 {
			observability.UploadsRejected.WithLabelValues("too_many_files").Inc()
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Only one file may be uploaded"))
		}

		files := form.File[field]
		if len(files) != 1 {
			observability.UploadsRejected.WithLabelValues("wrong_field").Inc()
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fmt.Sprintf("File must be sent in the %q field", field)))
		}
		fh := files[0]

		if fh.Size > maxBytes {
			observability.UploadsRejected.WithLabelValues("too_large").Inc()
			return models.RespondWithError(c, fiber.StatusRequestEntityTooLarge,
				models.NewPayloadTooLargeError(fmt.Sprintf("Image exceeds the %d MB limit", maxBytes/(1024*1024))))
		}

		f, err := fh.Open()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		}
		if int64(len(data)) > maxBytes {
			observability.UploadsRejected.WithLabelValues("too_large").Inc()
			return models.RespondWithError(c, fiber.StatusRequestEntityTooLarge,
				models.NewPayloadTooLargeError(fmt.Sprintf("Image exceeds the %d MB limit", maxBytes/(1024*1024))))
		}

		contentType := http.DetectContentType(data)
		if !IsAllowedImageType(contentType) {
			observability.UploadsRejected.WithLabelValues("unsupported_type").Inc()
			return models.RespondWithError(c, fiber.StatusUnsupportedMediaType,
				models.NewUnsupportedMediaTypeError("Only JPEG, PNG, GIF and WebP images are allowed"))
		}

		c.Locals(uploadLocalsKey, &Upload{
			Field:       field,
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
		return c.Next()
	}
}

// UploadFrom returns the buffered upload, or nil when the request carried no file.
func UploadFrom(c *fiber.Ctx) *Upload {
	u, _ := c.Locals(uploadLocalsKey).(*Upload)
	return u
}

package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// readUpload reads the multipart "file" field, capped at maxBytes+1 so oversize
// files are detected without buffering them whole.
func readUpload(c *fiber.Ctx, maxBytes int) (service.Upload, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return service.Upload{}, apperrors.NewValidationError("multipart field \"file\" is required", nil)
	}
	f, err := header.Open()
	if err != nil {
		return service.Upload{}, apperrors.NewValidationError("unable to read upload", nil)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, int64(maxBytes)+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return service.Upload{}, apperrors.NewValidationError("unable to read upload", nil)
	}
	return service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

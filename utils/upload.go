package utils

import (
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
)

const MaxImageSize = 5 * 1024 * 1024

// FormImage opens the uploaded file under field. The caller closes it.
func FormImage(c *fiber.Ctx, field string) (multipart.File, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%s file is required", field)
	}
	if header.Size > MaxImageSize {
		return nil, "", fmt.Errorf("%s cannot exceed %d MB", field, MaxImageSize/(1024*1024))
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %v", field, err)
	}
	return file, header.Header.Get(fiber.HeaderContentType), nil
}

package utils

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"healthcare-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// NormalizePage clamps a 1-based page and a page size; limit falls back to def and is capped at max.
func NormalizePage(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

// CalculateAge returns the age in years, months and days at the given instant.
func CalculateAge(dob, at time.Time) (int, int, int) {
	years := at.Year() - dob.Year()
	months := int(at.Month()) - int(dob.Month())
	days := at.Day() - dob.Day()

	if months < 0 {
		years--
		months += 12
	}
	if days < 0 {
		// last day of the previous month
		previousMonth := now.With(at).BeginningOfMonth().AddDate(0, 0, -1)
		days += previousMonth.Day()
		months--
		if months < 0 {
			years--
			months += 12
		}
	}
	return years, months, days
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidatePhoneNumber accepts 7 to 15 digits with an optional leading +; spaces and dashes are ignored.
func ValidatePhoneNumber(phone string) bool {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	return phonePattern.MatchString(phone)
}

var sensitiveFields = []string{"password", "current_password", "new_password", "token", "meeting_password"}

const redacted = "[REDACTED]"

// redactJSON masks sensitive top-level fields of a JSON object body.
func redactJSON(body []byte) (string, bool) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	changed := false
	for _, field := range sensitiveFields {
		if _, ok := payload[field]; ok {
			payload[field] = redacted
			changed = true
		}
	}
	if !changed {
		return string(body), true
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func sanitizeRequestBody(c *fiber.Ctx) string {
	if strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		formData := make(map[string]interface{})
		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}
			for key, files := range form.File {
				fileInfo := make([]map[string]interface{}, len(files))
				for i, file := range files {
					fileInfo[i] = map[string]interface{}{
						"filename": file.Filename,
						"size":     file.Size,
						"content":  "[FILE_CONTENT_REMOVED]",
					}
				}
				formData[key] = fileInfo
			}
		}
		if jsonBytes, err := json.Marshal(formData); err == nil {
			return string(jsonBytes)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	body := c.Body()
	if len(body) == 0 {
		return ""
	}
	if len(body) > 1000 && (strings.Contains(string(body), "data:image/") || isLikelyBase64(string(body))) {
		return "[LARGE_REQUEST_BODY_WITH_POSSIBLE_FILE_CONTENT]"
	}
	if sanitized, ok := redactJSON(body); ok {
		return sanitized
	}
	return string(body)
}

func isLikelyBase64(content string) bool {
	if len(content) < 100 {
		return false
	}
	base64Chars := 0
	for _, char := range content {
		if (char >= 'A' && char <= 'Z') || (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') ||
			char == '+' || char == '/' || char == '=' {
			base64Chars++
		}
	}
	return float64(base64Chars)/float64(len(content)) > 0.8
}

// sanitizeResponseBody masks issued tokens in auth responses.
func sanitizeResponseBody(c *fiber.Ctx) string {
	body := c.Response().Body()
	if !strings.HasPrefix(c.Path(), "/api/auth") {
		return string(append([]byte(nil), body...))
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(append([]byte(nil), body...))
	}
	if _, has := payload["token"]; has {
		payload["token"] = redacted
	}
	if data, ok := payload["data"].(map[string]interface{}); ok {
		if _, has := data["token"]; has {
			data["token"] = redacted
		}
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(out)
}

// CreateSanitizedLogEntry copies the request and response of c into a log entry with secrets and
// file content removed. Header bytes are copied since fiber reuses its buffers.
func CreateSanitizedLogEntry(c *fiber.Ctx, started time.Time, accountID *uint) types.LogEntry {
	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())
	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          string([]byte(c.Method())),
		URL:             string([]byte(c.OriginalURL())),
		IPAddress:       string([]byte(c.IP())),
		AccountID:       accountID,
		RequestBody:     sanitizeRequestBody(c),
		ResponseBody:    sanitizeResponseBody(c),
		RequestHeaders:  redactHeader(string(requestHeaders), fiber.HeaderAuthorization, fiber.HeaderCookie),
		ResponseHeaders: redactHeader(string(responseHeaders), fiber.HeaderSetCookie),
		StatusCode:      c.Response().StatusCode(),
		DurationMs:      time.Since(started).Milliseconds(),
		CreatedAt:       time.Now(),
	}
}

// redactHeader masks the values of the named headers in a raw header block.
func redactHeader(raw string, names ...string) string {
	lines := strings.Split(raw, "\r\n")
	for i, line := range lines {
		for _, name := range names {
			if len(line) > len(name) && strings.EqualFold(line[:len(name)+1], name+":") {
				lines[i] = name + ": " + redacted
			}
		}
	}
	return strings.Join(lines, "\r\n")
}

package blog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	model "healthcare-booking/models/blog"
)

// Limits are counted in characters, not bytes.
const (
	maxTitleLength   = 200
	maxExcerptLength = 300
)

type CreateRequest struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Excerpt        string   `json:"excerpt"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	IsFeatured     bool     `json:"is_featured"`
	SeoTitle       string   `json:"seo_title"`
	SeoDescription string   `json:"seo_description"`
	SeoKeywords    []string `json:"seo_keywords"`
}

func (r CreateRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("title cannot exceed 200 characters")
	}
	if model.Slugify(title) == "" {
		return fmt.Errorf("title must contain letters or digits")
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(r.Excerpt) > maxExcerptLength {
		return fmt.Errorf("excerpt cannot exceed 300 characters")
	}
	if r.Category != "" && !model.IsCategory(r.Category) {
		return fmt.Errorf("category %q is not supported", r.Category)
	}
	return nil
}

// UpdateRequest changes only the fields that are present.
type UpdateRequest struct {
	Title          *string   `json:"title"`
	Content        *string   `json:"content"`
	Excerpt        *string   `json:"excerpt"`
	Category       *string   `json:"category"`
	Tags           *[]string `json:"tags"`
	IsFeatured     *bool     `json:"is_featured"`
	SeoTitle       *string   `json:"seo_title"`
	SeoDescription *string   `json:"seo_description"`
	SeoKeywords    *[]string `json:"seo_keywords"`
}

func (r UpdateRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitleLength || model.Slugify(title) == "" {
			return fmt.Errorf("title must be 1 to 200 characters with letters or digits")
		}
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if r.Excerpt != nil && utf8.RuneCountInString(*r.Excerpt) > maxExcerptLength {
		return fmt.Errorf("excerpt cannot exceed 300 characters")
	}
	if r.Category != nil && !model.IsCategory(*r.Category) {
		return fmt.Errorf("category %q is not supported", *r.Category)
	}
	return nil
}

type ListQuery struct {
	Category string `query:"category"`
	Tag      string `query:"tag"`
	Q        string `query:"q"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

// SeoSuggestion is what the SEO helper proposes for a post.
type SeoSuggestion struct {
	Title       string   `json:"seo_title"`
	Description string   `json:"seo_description"`
	Keywords    []string `json:"seo_keywords"`
	Excerpt     string   `json:"excerpt"`
}

package blog

import (
	"math"
	"regexp"
	"strings"
	"time"

	"healthcare-booking/models/account"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

var Categories = []string{
	"general-health", "mental-health", "nutrition", "fitness", "pediatrics",
	"cardiology", "dermatology", "orthopedics", "neurology", "oncology", "other",
}

func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// Post is a health blog article.
type Post struct {
	ID            uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string                      `gorm:"type:varchar(200);not null" json:"title"`
	Slug          string                      `gorm:"type:varchar(255);not null;unique" json:"slug"`
	Content       string                      `gorm:"type:text;not null" json:"content"`
	Excerpt       string                      `gorm:"type:varchar(300)" json:"excerpt,omitempty"`
	AuthorID      uint                        `gorm:"not null;index" json:"author_id"`
	Author        *account.Account            `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category      string                      `gorm:"type:varchar(30);not null;default:general-health" json:"category"`
	Tags          datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	FeaturedImage string                      `gorm:"type:varchar(2048)" json:"featured_image,omitempty"`
	Status        Status                      `gorm:"type:varchar(20);not null;default:draft" json:"status"`
	IsFeatured    bool                        `gorm:"not null;default:false" json:"is_featured"`
	PublishedAt   *time.Time                  `json:"published_at,omitempty"`
	ReadingTime   int                         `gorm:"not null;default:1" json:"reading_time"`
	Views         int64                       `gorm:"not null;default:0" json:"views"`
	Likes         int64                       `gorm:"not null;default:0" json:"likes"`
	Shares        int64                       `gorm:"not null;default:0" json:"shares"`

	SeoTitle       string                      `gorm:"type:varchar(255)" json:"seo_title,omitempty"`
	SeoDescription string                      `gorm:"type:varchar(500)" json:"seo_description,omitempty"`
	SeoKeywords    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"seo_keywords,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string {
	return "blog_posts"
}

// NeedsSeo reports whether any SEO field is still empty.
func (p *Post) NeedsSeo() bool {
	return p.SeoTitle == "" || p.SeoDescription == "" || len(p.SeoKeywords) == 0
}

var (
	nonSlugChars  = regexp.MustCompile(`[^\w\s-]`)
	slugSeparator = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lower-cases the title, drops punctuation and joins words with single dashes.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = slugSeparator.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

const wordsPerMinute = 200

// ReadingTime is the whole number of minutes needed at 200 words per minute.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

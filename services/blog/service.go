package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	model "healthcare-booking/models/blog"
	"healthcare-booking/services/storage"
	blogTypes "healthcare-booking/types/blog"
	"healthcare-booking/utils"
)

var (
	ErrNotFound  = errors.New("blog post not found")
	ErrForbidden = errors.New("not authorized to modify this post")
	ErrSlugTaken = errors.New("a post with this slug already exists")
	ErrEmptyTerm = errors.New("search term is required")
)

type Counter string

const (
	CounterViews  Counter = "views"
	CounterLikes  Counter = "likes"
	CounterShares Counter = "shares"
)

type Store interface {
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post, columns ...string) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)
	List(ctx context.Context, filter Filter, offset, limit int) ([]model.Post, int64, error)
	Popular(ctx context.Context, limit int) ([]model.Post, error)
	Increment(ctx context.Context, id uint, counter Counter) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// Actor is the account writing or reading a post; the zero value is an anonymous reader.
type Actor struct {
	ID   uint
	Role account.Role
}

func (a Actor) canManage(p *model.Post) bool {
	return a.Role == account.RoleAdmin || (a.ID != 0 && a.ID == p.AuthorID)
}

const (
	defaultPageSize = 10
	maxPageSize     = 50
	maxPopular      = 20
	maxSlugAttempts = 1000
)

type Service struct {
	store    Store
	seo      SeoHelper
	uploader storage.Uploader
	now      func() time.Time
}

// NewService wires the blog; seo may be nil when no Gemini key is configured.
func NewService(store Store, seo SeoHelper, uploader storage.Uploader) *Service {
	if uploader == nil {
		uploader = storage.Disabled{}
	}
	return &Service{store: store, seo: seo, uploader: uploader, now: time.Now}
}

// UniqueSlug slugs the title and appends -1, -2, ... until no other post holds it.
func (s *Service) UniqueSlug(ctx context.Context, title string, selfID uint) (string, error) {
	base := model.Slugify(title)
	if base == "" {
		return "", fmt.Errorf("title %q produces an empty slug", title)
	}
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		taken, err := s.store.SlugExists(ctx, candidate, selfID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrSlugTaken
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) Create(ctx context.Context, author Actor, req blogTypes.CreateRequest) (*model.Post, error) {
	slug, err := s.UniqueSlug(ctx, req.Title, 0)
	if err != nil {
		return nil, err
	}
	category := req.Category
	if category == "" {
		category = "general-health"
	}
	post := &model.Post{
		Title:          strings.TrimSpace(req.Title),
		Slug:           slug,
		Content:        req.Content,
		Excerpt:        strings.TrimSpace(req.Excerpt),
		AuthorID:       author.ID,
		Category:       category,
		Tags:           cleanTags(req.Tags),
		Status:         model.StatusDraft,
		IsFeatured:     req.IsFeatured && author.Role == account.RoleAdmin,
		ReadingTime:    model.ReadingTime(req.Content),
		SeoTitle:       strings.TrimSpace(req.SeoTitle),
		SeoDescription: strings.TrimSpace(req.SeoDescription),
		SeoKeywords:    cleanTags(req.SeoKeywords),
	}
	if err := s.store.Create(ctx, post); err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("Blog post %d created as %s", post.ID, post.Slug))
	return post, nil
}

func (s *Service) managed(ctx context.Context, id uint, actor Actor) (*model.Post, error) {
	post, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(post) {
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *Service) Update(ctx context.Context, id uint, actor Actor, req blogTypes.UpdateRequest) (*model.Post, error) {
	post, err := s.managed(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	var columns []string
	if req.Title != nil && strings.TrimSpace(*req.Title) != post.Title {
		slug, err := s.UniqueSlug(ctx, *req.Title, post.ID)
		if err != nil {
			return nil, err
		}
		post.Title = strings.TrimSpace(*req.Title)
		post.Slug = slug
		columns = append(columns, "title", "slug")
	}
	if req.Content != nil {
		post.Content = *req.Content
		post.ReadingTime = model.ReadingTime(post.Content)
		columns = append(columns, "content", "reading_time")
	}
	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
		columns = append(columns, "excerpt")
	}
	if req.Category != nil {
		post.Category = *req.Category
		columns = append(columns, "category")
	}
	if req.Tags != nil {
		post.Tags = cleanTags(*req.Tags)
		columns = append(columns, "tags")
	}
	if req.IsFeatured != nil && actor.Role == account.RoleAdmin {
		post.IsFeatured = *req.IsFeatured
		columns = append(columns, "is_featured")
	}
	if req.SeoTitle != nil {
		post.SeoTitle = strings.TrimSpace(*req.SeoTitle)
		columns = append(columns, "seo_title")
	}
	if req.SeoDescription != nil {
		post.SeoDescription = strings.TrimSpace(*req.SeoDescription)
		columns = append(columns, "seo_description")
	}
	if req.SeoKeywords != nil {
		post.SeoKeywords = cleanTags(*req.SeoKeywords)
		columns = append(columns, "seo_keywords")
	}

	if err := s.store.Update(ctx, post, columns...); err != nil {
		return nil, err
	}
	return post, nil
}

var publishColumns = []string{"status", "published_at", "seo_title", "seo_description", "seo_keywords", "excerpt"}

// Publish makes the post public and fills missing SEO fields when a helper is configured.
func (s *Service) Publish(ctx context.Context, id uint, actor Actor) (*model.Post, error) {
	post, err := s.managed(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	post.Status = model.StatusPublished
	if post.PublishedAt == nil {
		at := s.now()
		post.PublishedAt = &at
	}
	s.fillSeo(ctx, post)

	if err := s.store.Update(ctx, post, publishColumns...); err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("Blog post %d published", post.ID))
	return post, nil
}

func (s *Service) fillSeo(ctx context.Context, post *model.Post) {
	if s.seo == nil || !post.NeedsSeo() {
		return
	}
	suggestion, err := s.seo.Suggest(ctx, post.Title, post.Content)
	if err != nil {
		logger.Warning(fmt.Sprintf("SEO suggestion failed for post %d: %v", post.ID, err))
		return
	}
	if post.SeoTitle == "" {
		post.SeoTitle = suggestion.Title
	}
	if post.SeoDescription == "" {
		post.SeoDescription = suggestion.Description
	}
	if len(post.SeoKeywords) == 0 {
		post.SeoKeywords = suggestion.Keywords
	}
	if post.Excerpt == "" {
		post.Excerpt = suggestion.Excerpt
	}
}

func (s *Service) Archive(ctx context.Context, id uint, actor Actor) (*model.Post, error) {
	post, err := s.managed(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	post.Status = model.StatusArchived
	if err := s.store.Update(ctx, post, "status"); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) Delete(ctx context.Context, id uint, actor Actor) error {
	if _, err := s.managed(ctx, id, actor); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// GetBySlug returns a published post and counts the view. Drafts and archived posts are visible
// only to their author and admins, without counting.
func (s *Service) GetBySlug(ctx context.Context, slug string, viewer Actor) (*model.Post, error) {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.Status != model.StatusPublished {
		if !viewer.canManage(post) {
			return nil, ErrNotFound
		}
		return post, nil
	}

	views, err := s.store.Increment(ctx, post.ID, CounterViews)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to count view of post %d", post.ID), err)
		return post, nil
	}
	post.Views = views
	return post, nil
}

// Like and Share only count on published posts.
func (s *Service) Like(ctx context.Context, slug string) (int64, error) {
	return s.bump(ctx, slug, CounterLikes)
}

func (s *Service) Share(ctx context.Context, slug string) (int64, error) {
	return s.bump(ctx, slug, CounterShares)
}

func (s *Service) bump(ctx context.Context, slug string, counter Counter) (int64, error) {
	post, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	if post.Status != model.StatusPublished {
		return 0, ErrNotFound
	}
	return s.store.Increment(ctx, post.ID, counter)
}

// Page is one page of published posts.
type Page struct {
	Items []model.Post
	Total int64
	Page  int
	Limit int
}

func (s *Service) List(ctx context.Context, q blogTypes.ListQuery) (*Page, error) {
	return s.page(ctx, Filter{Category: q.Category, Tag: strings.ToLower(strings.TrimSpace(q.Tag))}, q.Page, q.Limit)
}

func (s *Service) Search(ctx context.Context, q blogTypes.ListQuery) (*Page, error) {
	term := strings.TrimSpace(q.Q)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	return s.page(ctx, Filter{Category: q.Category, Query: term}, q.Page, q.Limit)
}

func (s *Service) page(ctx context.Context, f Filter, page, limit int) (*Page, error) {
	page, limit = utils.NormalizePage(page, limit, defaultPageSize, maxPageSize)
	posts, total, err := s.store.List(ctx, f, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Items: posts, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) Popular(ctx context.Context, limit int) ([]model.Post, error) {
	_, limit = utils.NormalizePage(1, limit, 5, maxPopular)
	return s.store.Popular(ctx, limit)
}

// UploadFeaturedImage stores the image and points the post at it.
func (s *Service) UploadFeaturedImage(ctx context.Context, id uint, actor Actor, contentType string, body io.Reader) (*model.Post, error) {
	post, err := s.managed(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.UploadImage(ctx, "blog", contentType, body)
	if err != nil {
		return nil, err
	}
	post.FeaturedImage = url
	if err := s.store.Update(ctx, post, "featured_image"); err != nil {
		return nil, err
	}
	return post, nil
}

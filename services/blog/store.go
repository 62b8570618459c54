package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	model "healthcare-booking/models/blog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Filter narrows a published post listing.
type Filter struct {
	Category string
	Tag      string
	Query    string
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.Is(err, gorm.ErrDuplicatedKey) || (errors.As(err, &pgErr) && pgErr.Code == "23505")
}

func (s *GormStore) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) Create(ctx context.Context, post *model.Post) error {
	if err := s.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Update writes the named columns of post; views, likes and shares are left to Increment.
func (s *GormStore) Update(ctx context.Context, post *model.Post, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	result := s.db.WithContext(ctx).Model(post).Select(columns).Updates(post)
	if err := result.Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to update post: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) find(ctx context.Context, query string, arg interface{}) (*model.Post, error) {
	var post model.Post
	if err := s.db.WithContext(ctx).Preload("Author").Where(query, arg).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return &post, nil
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	return s.find(ctx, "id = ?", id)
}

func (s *GormStore) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return s.find(ctx, "slug = ?", slug)
}

func (s *GormStore) published(ctx context.Context, f Filter) (*gorm.DB, error) {
	tx := s.db.WithContext(ctx).Model(&model.Post{}).Where("status = ?", model.StatusPublished)
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.Tag != "" {
		tag, err := json.Marshal([]string{f.Tag})
		if err != nil {
			return nil, err
		}
		tx = tx.Where("tags @> ?", string(tag))
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		tx = tx.Where("title ILIKE ? OR content ILIKE ? OR excerpt ILIKE ?", like, like, like)
	}
	return tx, nil
}

func (s *GormStore) List(ctx context.Context, f Filter, offset, limit int) ([]model.Post, int64, error) {
	tx, err := s.published(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}
	var posts []model.Post
	err = tx.Preload("Author").
		Order("is_featured desc, published_at desc").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

func (s *GormStore) Popular(ctx context.Context, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := s.db.WithContext(ctx).Preload("Author").
		Where("status = ?", model.StatusPublished).
		Order("views desc, likes desc").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load popular posts: %w", err)
	}
	return posts, nil
}

var counterColumns = map[Counter]string{
	CounterViews:  "views",
	CounterLikes:  "likes",
	CounterShares: "shares",
}

// Increment bumps a counter in a single statement and returns the new value.
func (s *GormStore) Increment(ctx context.Context, id uint, counter Counter) (int64, error) {
	column, ok := counterColumns[counter]
	if !ok {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}
	var value int64
	result := s.db.WithContext(ctx).
		Raw(fmt.Sprintf("UPDATE blog_posts SET %[1]s = %[1]s + 1 WHERE id = ? RETURNING %[1]s", column), id).
		Scan(&value)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return value, nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Post{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

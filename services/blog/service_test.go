package blog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"healthcare-booking/models/account"
	model "healthcare-booking/models/blog"
	blogTypes "healthcare-booking/types/blog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]*model.Post

	written []string
}

func newMemStore() *memStore {
	return &memStore{posts: make(map[uint]*model.Post)}
}

func (s *memStore) SlugExists(_ context.Context, slug string, excludeID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Create(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return ErrSlugTaken
		}
	}
	s.nextID++
	post.ID = s.nextID
	c := *post
	s.posts[post.ID] = &c
	return nil
}

func (s *memStore) Update(_ context.Context, post *model.Post, columns ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *post
	s.posts[post.ID] = &c
	s.written = columns
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uint) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *memStore) FindBySlug(_ context.Context, slug string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) List(_ context.Context, f Filter, offset, limit int) ([]model.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Post
	for _, p := range s.posts {
		if p.Status != model.StatusPublished || (f.Category != "" && p.Category != f.Category) {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Content), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	if end := offset + limit; end < len(out) {
		out = out[:end]
	}
	return out[offset:], total, nil
}

func (s *memStore) Popular(_ context.Context, limit int) ([]model.Post, error) {
	page, _, err := s.List(context.Background(), Filter{}, 0, 1000)
	sort.Slice(page, func(i, j int) bool { return page[i].Views > page[j].Views })
	if len(page) > limit {
		page = page[:limit]
	}
	return page, err
}

func (s *memStore) Increment(_ context.Context, id uint, counter Counter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return 0, ErrNotFound
	}
	switch counter {
	case CounterViews:
		p.Views++
		return p.Views, nil
	case CounterLikes:
		p.Likes++
		return p.Likes, nil
	default:
		p.Shares++
		return p.Shares, nil
	}
}

func (s *memStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

type mockSeo struct {
	mock.Mock
}

func (m *mockSeo) Suggest(ctx context.Context, title, content string) (*blogTypes.SeoSuggestion, error) {
	args := m.Called(ctx, title, content)
	suggestion, _ := args.Get(0).(*blogTypes.SeoSuggestion)
	return suggestion, args.Error(1)
}

var (
	doctor = Actor{ID: 5, Role: account.RoleDoctor}
	other  = Actor{ID: 6, Role: account.RoleDoctor}
	admin  = Actor{ID: 1, Role: account.RoleAdmin}
)

func createReq(title string) blogTypes.CreateRequest {
	return blogTypes.CreateRequest{Title: title, Content: strings.Repeat("word ", 450), Category: "nutrition"}
}

func TestCreate_AppendsCounterOnSlugCollision(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, doctor, createReq("Hello World"))
	require.NoError(t, err)
	assert.Equal(t, "hello-world", first.Slug)

	second, err := svc.Create(ctx, doctor, createReq("Hello, World!!"))
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1", second.Slug)

	third, err := svc.Create(ctx, other, createReq("hello   world"))
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", third.Slug)

	assert.Equal(t, model.StatusDraft, first.Status)
	assert.Equal(t, 3, first.ReadingTime)
	assert.False(t, first.IsFeatured)
}

func TestUpdate_ReslugsExcludingItself(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	ctx := context.Background()
	post, _ := svc.Create(ctx, doctor, createReq("Sleep Basics"))

	title := "Sleep basics!"
	updated, err := svc.Update(ctx, post.ID, doctor, blogTypes.UpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "sleep-basics", updated.Slug)

	content := "short text"
	updated, err = svc.Update(ctx, post.ID, admin, blogTypes.UpdateRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ReadingTime)

	_, err = svc.Update(ctx, post.ID, other, blogTypes.UpdateRequest{Content: &content})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestWrites_NeverTouchCounters(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()
	post, _ := svc.Create(ctx, doctor, createReq("Hydration"))

	content, excerpt := "drink water", "short"
	_, err := svc.Update(ctx, post.ID, doctor, blogTypes.UpdateRequest{Content: &content, Excerpt: &excerpt})
	require.NoError(t, err)
	assert.Equal(t, []string{"content", "reading_time", "excerpt"}, store.written)

	_, err = svc.Publish(ctx, post.ID, doctor)
	require.NoError(t, err)
	assert.NotContains(t, store.written, "views")
	assert.NotContains(t, store.written, "likes")
	assert.NotContains(t, store.written, "shares")

	_, err = svc.Archive(ctx, post.ID, doctor)
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, store.written)
}

func TestPublish_FillsMissingSeo(t *testing.T) {
	seo := &mockSeo{}
	svc := NewService(newMemStore(), seo, nil)
	ctx := context.Background()
	req := createReq("Heart Health")
	req.SeoTitle = "Keep your heart healthy"
	post, _ := svc.Create(ctx, doctor, req)

	seo.On("Suggest", mock.Anything, "Heart Health", post.Content).Return(&blogTypes.SeoSuggestion{
		Title:       "ignored",
		Description: "How to look after your heart",
		Keywords:    []string{"heart", "cardio"},
		Excerpt:     "A short guide.",
	}, nil).Once()

	published, err := svc.Publish(ctx, post.ID, doctor)
	require.NoError(t, err)

	assert.Equal(t, model.StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, "Keep your heart healthy", published.SeoTitle)
	assert.Equal(t, "How to look after your heart", published.SeoDescription)
	assert.Equal(t, []string{"heart", "cardio"}, []string(published.SeoKeywords))
	assert.Equal(t, "A short guide.", published.Excerpt)
	seo.AssertExpectations(t)
}

func TestPublish_IgnoresSeoFailure(t *testing.T) {
	seo := &mockSeo{}
	svc := NewService(newMemStore(), seo, nil)
	ctx := context.Background()
	post, _ := svc.Create(ctx, doctor, createReq("Stretching"))
	seo.On("Suggest", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	published, err := svc.Publish(ctx, post.ID, doctor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.Status)
	assert.Empty(t, published.SeoDescription)
}

func TestGetBySlug_VisibilityAndViews(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	ctx := context.Background()
	post, _ := svc.Create(ctx, doctor, createReq("Flu Season"))

	_, err := svc.GetBySlug(ctx, post.Slug, Actor{})
	assert.ErrorIs(t, err, ErrNotFound)

	draft, err := svc.GetBySlug(ctx, post.Slug, doctor)
	require.NoError(t, err)
	assert.Zero(t, draft.Views)

	_, err = svc.Publish(ctx, post.ID, doctor)
	require.NoError(t, err)

	seen, err := svc.GetBySlug(ctx, post.Slug, Actor{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seen.Views)

	likes, err := svc.Like(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	_, err = svc.Archive(ctx, post.ID, admin)
	require.NoError(t, err)
	_, err = svc.Share(ctx, post.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndSearch(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	ctx := context.Background()
	for _, title := range []string{"Vitamin D", "Vitamin C", "Running"} {
		post, err := svc.Create(ctx, doctor, createReq(title))
		require.NoError(t, err)
		_, err = svc.Publish(ctx, post.ID, doctor)
		require.NoError(t, err)
	}
	_, _ = svc.Create(ctx, doctor, createReq("Vitamin Draft"))

	page, err := svc.List(ctx, blogTypes.ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)

	found, err := svc.Search(ctx, blogTypes.ListQuery{Q: "vitamin"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Total)

	_, err = svc.Search(ctx, blogTypes.ListQuery{Q: "  "})
	assert.ErrorIs(t, err, ErrEmptyTerm)
}

func TestDelete_RequiresAuthorOrAdmin(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()
	post, _ := svc.Create(ctx, doctor, createReq("Allergies"))

	assert.ErrorIs(t, svc.Delete(ctx, post.ID, other), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, post.ID, admin))
	_, err := store.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

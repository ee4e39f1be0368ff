package cms

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"hashhaven/cache"
	"hashhaven/logger"
)

const (
	DefaultPerPage = 6
	MaxPerPage     = 100
)

// PostSummary is one entry of a blog listing.
type PostSummary struct {
	ID       int    `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Date     string `json:"date"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
	ReadTime string `json:"readTime,omitempty"`
}

type Listing struct {
	Posts    []PostSummary `json:"posts"`
	Fallback bool          `json:"fallback"`
}

type Article struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	ReadTime string `json:"readTime"`
	Image    string `json:"image,omitempty"`
	Fallback bool   `json:"fallback"`
}

type Status struct {
	Connected bool `json:"connected"`
	Installed bool `json:"installed"`
}

// Source is the part of the WordPress client the blog reads from.
type Source interface {
	Posts(ctx context.Context, page, perPage int) ([]Post, error)
	PostBySlug(ctx context.Context, slug string) (*Post, error)
	Search(ctx context.Context, query string) ([]Post, error)
	PostsByCategory(ctx context.Context, categoryID int) ([]Post, error)
	Media(ctx context.Context, id int) (*Media, error)
	Healthy(ctx context.Context) bool
	Installed(ctx context.Context) bool
}

// Blog serves CMS content through a read-through cache. When the CMS fails
// it answers with built-in content, which is never cached.
type Blog struct {
	source Source
	store  cache.Store
}

func NewBlog(source Source, store cache.Store) *Blog {
	if store == nil {
		store = cache.NopStore{}
	}
	return &Blog{source: source, store: store}
}

func (b *Blog) List(ctx context.Context, page, perPage int) Listing {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	key := cache.Key("blog:list", strconv.Itoa(page), strconv.Itoa(perPage))
	posts, err := b.readPosts(ctx, key, func() ([]Post, error) {
		return b.source.Posts(ctx, page, perPage)
	})
	if err != nil {
		logger.Warn("WordPress not available, using fallback content: %v", err)
		return Listing{Posts: fallbackPage(page, perPage), Fallback: true}
	}
	return Listing{Posts: posts}
}

func (b *Blog) Search(ctx context.Context, query string) Listing {
	query = strings.TrimSpace(query)
	key := cache.Key("blog:search", strings.ToLower(query))
	posts, err := b.readPosts(ctx, key, func() ([]Post, error) {
		return b.source.Search(ctx, query)
	})
	if err != nil {
		logger.Warn("WordPress search failed, searching fallback content: %v", err)
		return Listing{Posts: searchFallback(query), Fallback: true}
	}
	return Listing{Posts: posts}
}

func (b *Blog) Category(ctx context.Context, categoryID int) Listing {
	key := cache.Key("blog:category", strconv.Itoa(categoryID))
	posts, err := b.readPosts(ctx, key, func() ([]Post, error) {
		return b.source.PostsByCategory(ctx, categoryID)
	})
	if err != nil {
		logger.Warn("WordPress category %d failed: %v", categoryID, err)
		return Listing{Posts: []PostSummary{}, Fallback: true}
	}
	return Listing{Posts: posts}
}

// Article returns the post for slug, or the welcome article when the CMS
// has no such post or cannot be reached.
func (b *Blog) Article(ctx context.Context, slug string) Article {
	key := cache.Key("blog:article", slug)

	var cached Article
	if b.lookup(ctx, key, &cached) {
		return cached
	}

	post, err := b.source.PostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Info("No WordPress post for slug %q, serving fallback article", slug)
		} else {
			logger.Warn("Error fetching %q from WordPress: %v", slug, err)
		}
		return fallbackArticle
	}

	article := Article{
		Slug:     post.Slug,
		Title:    StripHTML(post.Title.Rendered),
		Content:  post.Content.Rendered,
		Date:     postDate(post.Date),
		ReadTime: ReadTime(post.Content.Rendered),
		Image:    b.image(ctx, *post),
	}
	b.save(ctx, key, article)
	return article
}

func (b *Blog) Status(ctx context.Context) Status {
	return Status{
		Connected: b.source.Healthy(ctx),
		Installed: b.source.Installed(ctx),
	}
}

func (b *Blog) readPosts(ctx context.Context, key string, fetch func() ([]Post, error)) ([]PostSummary, error) {
	var cached []PostSummary
	if b.lookup(ctx, key, &cached) {
		return cached, nil
	}

	posts, err := fetch()
	if err != nil {
		return nil, err
	}
	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, b.summarize(ctx, p))
	}
	b.save(ctx, key, summaries)
	return summaries, nil
}

func (b *Blog) lookup(ctx context.Context, key string, dst any) bool {
	hit, err := b.store.Get(ctx, key, dst)
	if err != nil {
		logger.Warn("Cache read %s failed: %v", key, err)
		return false
	}
	return hit
}

func (b *Blog) save(ctx context.Context, key string, v any) {
	if err := b.store.Set(ctx, key, v); err != nil {
		logger.Warn("Cache write %s failed: %v", key, err)
	}
}

func (b *Blog) summarize(ctx context.Context, p Post) PostSummary {
	return PostSummary{
		ID:       p.ID,
		Slug:     p.Slug,
		Title:    StripHTML(p.Title.Rendered),
		Excerpt:  StripHTML(p.Excerpt.Rendered),
		Date:     postDate(p.Date),
		Image:    b.image(ctx, p),
		ReadTime: ReadTime(p.Content.Rendered),
	}
}

// image prefers the embedded featured media and falls back to a media
// lookup when only featured_media is set. A failed lookup leaves no image.
func (b *Blog) image(ctx context.Context, p Post) string {
	if m, ok := p.FeaturedImage(); ok {
		return m.SourceURL
	}
	if p.FeaturedMedia <= 0 {
		return ""
	}
	m, err := b.source.Media(ctx, p.FeaturedMedia)
	if err != nil {
		logger.Warn("Featured media %d for post %d unavailable: %v", p.FeaturedMedia, p.ID, err)
		return ""
	}
	return m.SourceURL
}

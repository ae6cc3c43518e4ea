package upstream

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/ecoscope-id/ecoscope/internal/infra"
	"github.com/ecoscope-id/ecoscope/pkg/models"
)

// BulletinSource is one RSS feed of weather or agriculture bulletins.
type BulletinSource struct {
	Name   string
	RSSURL string
}

// DefaultBulletinSources lists the configured Indonesian feeds.
var DefaultBulletinSources = []BulletinSource{
	{
		Name:   "BMKG Berita",
		RSSURL: "https://www.bmkg.go.id/rss/berita.xml",
	},
	{
		Name:   "BMKG Press Release",
		RSSURL: "https://www.bmkg.go.id/rss/press-release.xml",
	},
	{
		Name:   "Kementan",
		RSSURL: "https://www.pertanian.go.id/rss",
	},
}

// Bulletins aggregates weather and agriculture bulletins from RSS feeds.
type Bulletins struct {
	sources []BulletinSource
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewBulletins creates a bulletin source with the default feeds.
func NewBulletins() *Bulletins {
	return NewBulletinsWithSources(DefaultBulletinSources)
}

// NewBulletinsWithSources creates a bulletin source with custom feeds.
func NewBulletinsWithSources(sources []BulletinSource) *Bulletins {
	return &Bulletins{
		sources: sources,
		cache:   infra.NewCache(15 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (b *Bulletins) Name() string { return "Bulletins" }

// Latest returns recent bulletins from all configured feeds, newest first.
// Feeds that fail to parse are skipped.
func (b *Bulletins) Latest(ctx context.Context, limit int) ([]models.Bulletin, error) {
	cacheKey := fmt.Sprintf("bulletins:%d", limit)
	if cached, ok := b.cache.Get(cacheKey); ok {
		return cached.([]models.Bulletin), nil
	}

	var all []models.Bulletin
	for _, src := range b.sources {
		items, err := b.fetchFeed(ctx, src)
		if err != nil {
			continue
		}
		all = append(all, items...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	b.cache.Set(cacheKey, all)
	return all, nil
}

func (b *Bulletins) fetchFeed(ctx context.Context, src BulletinSource) ([]models.Bulletin, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := b.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	bulletins := make([]models.Bulletin, 0, len(feed.Items))
	for _, item := range feed.Items {
		bl := models.Bulletin{
			Source:  src.Name,
			Title:   item.Title,
			URL:     item.Link,
			Summary: stripHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			bl.PublishedAt = *item.PublishedParsed
		}
		bulletins = append(bulletins, bl)
	}

	return bulletins, nil
}

// stripHTML removes HTML tags from a string using goquery.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/cache"
)

type SitemapItem struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   float32
}

type SitemapUsecase struct {
	repo    domain.CatalogRepository
	baseURL string
	cache   cache.CacheService
	ttl     time.Duration
	now     func() time.Time
}

func NewSitemapUsecase(repo domain.CatalogRepository, cache cache.CacheService, cfg *config.Config) *SitemapUsecase {
	return &SitemapUsecase{
		repo:    repo,
		baseURL: strings.TrimRight(cfg.FrontendURL, "/"),
		cache:   cache,
		ttl:     cfg.CacheSitemapTTL,
		now:     time.Now,
	}
}

var sitemapStatics = []string{"", "/cars", "/parts", "/search", "/contact", "/login"}

func (u *SitemapUsecase) GenerateSitemap(ctx context.Context) ([]SitemapItem, error) {
	if val, found := u.cache.Get(keySitemap); found {
		return val.([]SitemapItem), nil
	}

	today := u.now().Format("2006-01-02")
	items := make([]SitemapItem, 0, len(sitemapStatics))
	for _, s := range sitemapStatics {
		items = append(items, SitemapItem{
			Loc:        u.baseURL + s,
			LastMod:    today,
			ChangeFreq: "daily",
			Priority:   0.8,
		})
	}
	items[0].Priority = 1.0

	entries, err := u.repo.GetSitemapEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitemap entries: %w", err)
	}
	for _, e := range entries {
		path, priority := "/parts/", float32(0.7)
		if e.ItemType == domain.ItemTypeCar {
			path, priority = "/cars/", 0.9
		}
		items = append(items, SitemapItem{
			Loc:        u.baseURL + path + e.Slug,
			LastMod:    e.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   priority,
		})
	}

	brands, err := u.repo.GetBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitemap brands: %w", err)
	}
	for _, b := range brands {
		items = append(items, SitemapItem{
			Loc:        u.baseURL + "/cars?brand=" + b.Slug,
			LastMod:    today,
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}

	u.cache.Set(keySitemap, items, u.ttl)
	return items, nil
}

package usecase

import (
	"context"
	"testing"
	"time"

	"cardealer-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSitemap(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)

	repo := new(mockCatalogRepo)
	repo.On("GetSitemapEntries", ctx).Return([]domain.SitemapEntry{
		{ItemType: domain.ItemTypeCar, Slug: "2021-toyota-corolla", UpdatedAt: updated},
		{ItemType: domain.ItemTypePart, Slug: "oil-filter", UpdatedAt: updated},
	}, nil).Once()
	repo.On("GetBrands", ctx).Return([]domain.Brand{{Slug: "toyota"}}, nil).Once()

	uc := NewSitemapUsecase(repo, newTestCache(), testConfig())
	items, err := uc.GenerateSitemap(ctx)
	require.NoError(t, err)

	require.Len(t, items, len(sitemapStatics)+3)
	assert.Equal(t, "https://cars.example.com", items[0].Loc)
	assert.Equal(t, float32(1.0), items[0].Priority)

	locs := make([]string, 0, len(items))
	for _, it := range items {
		locs = append(locs, it.Loc)
	}
	assert.Contains(t, locs, "https://cars.example.com/cars/2021-toyota-corolla")
	assert.Contains(t, locs, "https://cars.example.com/parts/oil-filter")
	assert.Contains(t, locs, "https://cars.example.com/cars?brand=toyota")

	// cached
	_, err = uc.GenerateSitemap(ctx)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

package usecase

import (
	"context"
	"strings"
	"time"

	"cardealer-backend/internal/domain"
)

type searchUsecase struct {
	repo    domain.CatalogRepository
	timeout time.Duration
}

func NewSearchUsecase(repo domain.CatalogRepository, timeout time.Duration) domain.SearchUsecase {
	return &searchUsecase{
		repo:    repo,
		timeout: timeout,
	}
}

// Search runs one query across cars and parts. A blank query returns an empty page.
func (u *searchUsecase) Search(ctx context.Context, query string, page, limit int) ([]domain.CatalogItem, domain.Pagination, error) {
	req := domain.PageRequest{Page: page, Limit: limit}.Normalize(20, catalogMaxLimit)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.CatalogItem{}, domain.NewPagination(req.Page, req.Limit, 0), nil
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	items, total, err := u.repo.Search(ctx, query, req.Limit, req.Offset())
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(req.Page, req.Limit, total), nil
}

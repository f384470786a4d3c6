package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/cache"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"
)

const maxMessageLength = 5000

type ContactUsecase struct {
	repo  domain.ContactRepository
	cache cache.CacheService
}

func NewContactUsecase(repo domain.ContactRepository, cache cache.CacheService) *ContactUsecase {
	return &ContactUsecase{repo: repo, cache: cache}
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (uc *ContactUsecase) Submit(ctx context.Context, in ContactInput) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   utils.NormalizeEmail(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}

	var missing []string
	for _, f := range [...]struct{ name, value string }{
		{"name", msg.Name},
		{"email", msg.Email},
		{"subject", msg.Subject},
		{"message", msg.Message},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !strings.Contains(msg.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(msg.Message) > maxMessageLength {
		return nil, fmt.Errorf("%w: message is limited to %d characters", domain.ErrInvalidInput, maxMessageLength)
	}

	if err := uc.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	uc.cache.DeletePrefix(keyDashboardPrefix + "admin:")
	logger.WithContext(ctx).Info().Str("message_id", msg.ID).Msg("Contact message received")
	return msg, nil
}

func (uc *ContactUsecase) List(ctx context.Context, f domain.MessageFilter) ([]domain.ContactMessage, domain.Pagination, error) {
	req := domain.PageRequest{Page: f.Page, Limit: f.Limit}.Normalize(20, 100)
	f.Page, f.Limit = req.Page, req.Limit

	msgs, total, err := uc.repo.GetAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return msgs, domain.NewPagination(f.Page, f.Limit, total), nil
}

func (uc *ContactUsecase) MarkRead(ctx context.Context, id string) error {
	if err := uc.repo.MarkRead(ctx, id); err != nil {
		return err
	}
	uc.cache.DeletePrefix(keyDashboardPrefix + "admin:")
	return nil
}

func (uc *ContactUsecase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.cache.DeletePrefix(keyDashboardPrefix + "admin:")
	return nil
}

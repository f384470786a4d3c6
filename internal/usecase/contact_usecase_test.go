package usecase

import (
	"context"
	"strings"
	"testing"

	"cardealer-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockContactRepo struct{ mock.Mock }

func (m *mockContactRepo) Create(ctx context.Context, msg *domain.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockContactRepo) GetAll(ctx context.Context, f domain.MessageFilter) ([]domain.ContactMessage, int64, error) {
	args := m.Called(ctx, f)
	msgs, _ := args.Get(0).([]domain.ContactMessage)
	return msgs, args.Get(1).(int64), args.Error(2)
}

func (m *mockContactRepo) MarkRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockContactRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestSubmitContactMessage(t *testing.T) {
	ctx := context.Background()
	valid := ContactInput{
		Name:    "Ada",
		Email:   " Ada@Example.com",
		Subject: "Test drive",
		Message: "Is the 2021 Corolla still available?",
	}

	t.Run("valid", func(t *testing.T) {
		repo := new(mockContactRepo)
		repo.On("Create", ctx, mock.MatchedBy(func(m *domain.ContactMessage) bool {
			return m.Email == "ada@example.com" && m.Phone == ""
		})).Return(nil)

		_, err := NewContactUsecase(repo, newTestCache()).Submit(ctx, valid)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing fields are listed", func(t *testing.T) {
		_, err := NewContactUsecase(new(mockContactRepo), newTestCache()).Submit(ctx, ContactInput{Name: "Ada"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "email, subject, message")
	})

	t.Run("email without at sign", func(t *testing.T) {
		in := valid
		in.Email = "ada.example.com"
		_, err := NewContactUsecase(new(mockContactRepo), newTestCache()).Submit(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("message too long", func(t *testing.T) {
		in := valid
		in.Message = strings.Repeat("a", maxMessageLength+1)
		_, err := NewContactUsecase(new(mockContactRepo), newTestCache()).Submit(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestListContactMessages(t *testing.T) {
	ctx := context.Background()
	repo := new(mockContactRepo)
	repo.On("GetAll", ctx, domain.MessageFilter{UnreadOnly: true, Page: 1, Limit: 20}).
		Return([]domain.ContactMessage{{ID: "m-1"}}, int64(1), nil)

	msgs, page, err := NewContactUsecase(repo, newTestCache()).List(ctx, domain.MessageFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, int64(1), page.TotalItems)
}

package domain

import (
	"context"
	"time"
)

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type MessageFilter struct {
	UnreadOnly bool
	Page       int
	Limit      int
}

type ContactRepository interface {
	Create(ctx context.Context, msg *ContactMessage) error
	GetAll(ctx context.Context, filter MessageFilter) ([]ContactMessage, int64, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

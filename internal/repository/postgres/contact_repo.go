package postgres

import (
	"context"
	"fmt"

	"cardealer-backend/internal/domain"
)

type contactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) domain.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, m *domain.ContactMessage) error {
	return mapError(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at`,
		m.Name, m.Email, m.Phone, m.Subject, m.Message,
	).Scan(&m.ID, &m.IsRead, &m.CreatedAt))
}

func (r *contactRepository) GetAll(ctx context.Context, f domain.MessageFilter) ([]domain.ContactMessage, int64, error) {
	db := conn(ctx, r.db)
	w := &where{}
	if f.UnreadOnly {
		w.raw("NOT is_read")
	}

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := w.next()
	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT id, name, email, phone, subject, message, is_read, created_at
		FROM contact_messages %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, w.String(), n, n+1),
		append(w.args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	msgs := []domain.ContactMessage{}
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		msgs = append(msgs, m)
	}
	return msgs, total, rows.Err()
}

func (r *contactRepository) MarkRead(ctx context.Context, id string) error {
	return expectOne(conn(ctx, r.db).Exec(ctx, `UPDATE contact_messages SET is_read = TRUE WHERE id = $1`, id))
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	return expectOne(conn(ctx, r.db).Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id))
}

package postgres

import (
	"context"

	"cardealer-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) domain.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName,
		&u.Phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, first_name, last_name, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName, user.Phone, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapError(err)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetAll(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, firstName, lastName, phone string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, firstName, lastName, phone))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash))
}

func (r *userRepository) SetRole(ctx context.Context, id, role string) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role))
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return expectOne(conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}

// --- Sessions ---

func (r *userRepository) SaveSession(ctx context.Context, s *domain.Session) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO sessions (token, user_id, device, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		s.Token, s.UserID, s.Device, s.ExpiresAt,
	).Scan(&s.CreatedAt)
	return mapError(err)
}

func (r *userRepository) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT token, user_id, device, revoked, expires_at, created_at
		FROM sessions WHERE token = $1`, token,
	).Scan(&s.Token, &s.UserID, &s.Device, &s.Revoked, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *userRepository) RevokeSession(ctx context.Context, token string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE sessions SET revoked = TRUE WHERE token = $1`, token)
	return mapError(err)
}

func (r *userRepository) RevokeOtherSessions(ctx context.Context, userID, keepToken string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE sessions SET revoked = TRUE
		WHERE user_id = $1 AND revoked = FALSE AND token::text <> $2`, userID, keepToken)
	return mapError(err)
}

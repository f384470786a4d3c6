package postgres

import (
	"errors"
	"fmt"
	"strings"

	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02"
)

// mapError translates driver errors into domain sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.ConstraintName)
		case pgInvalidTextRep:
			// malformed UUID in a lookup
			return domain.ErrNotFound
		}
	}
	return err
}

// expectOne turns an UPDATE/DELETE that touched nothing into ErrNotFound.
func expectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func encodeImages(images []string) []byte {
	if images == nil {
		images = []string{}
	}
	b, _ := json.Marshal(images)
	return b
}

func decodeImages(raw []byte) []string {
	images := []string{}
	if len(raw) == 0 {
		return images
	}
	if err := json.Unmarshal(raw, &images); err != nil {
		logger.Get().Warn().Err(err).Msg("Corrupt images column, returning none")
		return []string{}
	}
	return images
}

func firstImage(raw []byte) string {
	if images := decodeImages(raw); len(images) > 0 {
		return images[0]
	}
	return ""
}

func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	clauses []string
	args    []any
}

// add appends a clause; every %d in clause is replaced by the new argument's position.
func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	n := len(w.args)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "%d", fmt.Sprint(n)))
}

// raw appends a clause without arguments.
func (w *where) raw(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

// next is the placeholder index for an argument appended after the filters.
func (w *where) next() int {
	return len(w.args) + 1
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

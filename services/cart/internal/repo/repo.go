package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	// ErrTransient marks serialization or lock conflicts that may succeed on retry.
	ErrTransient = errors.New("transient storage error")
	// ErrConstraint marks writes rejected by a schema constraint.
	ErrConstraint = errors.New("constraint violation")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// classify wraps driver errors into the package sentinels, keeping the original in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrUserNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
		case "23505", "23503", "23514":
			return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"),
		strings.Contains(msg, "SQLITE_BUSY"),
		strings.Contains(msg, "SQLITE_LOCKED"):
		return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
	case strings.Contains(msg, "constraint failed"):
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

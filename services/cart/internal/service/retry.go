package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/repo"
)

// withRetry runs op once more when it fails with a transient storage error.
// Constraint violations and business errors are returned as is.
func withRetry(ctx context.Context, op func() error) error {
	err := op()
	if err == nil || !errors.Is(err, repo.ErrTransient) || errors.Is(err, repo.ErrConstraint) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	logging.FromContext(ctx).Warn("cart_storage_retry", "error", err)
	return op()
}

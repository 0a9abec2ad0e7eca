package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/coffeemania/pkg/cartclient"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
)

type mutation struct {
	name   string
	local  func(ctx context.Context) error
	remote func(ctx context.Context, token string) error
}

type outcome int

const (
	outcomeReject outcome = iota
	outcomeFallback
	outcomeUnauthorized
)

func classify(ctx context.Context, err error) outcome {
	var apiErr *cartclient.APIError
	switch {
	case errors.Is(err, cartclient.ErrUnauthorized):
		return outcomeUnauthorized
	case errors.As(err, &apiErr):
		if apiErr.ServerSide() {
			return outcomeFallback
		}
		return outcomeReject
	case ctx.Err() != nil:
		return outcomeReject
	default:
		return outcomeFallback
	}
}

// apply routes a cart mutation by session state. Guests write the mirror.
// Authenticated sessions write the server and then refresh the mirror from it;
// when the server is unreachable the mirror is written instead and marked stale
// until the next successful sync. Business rejections leave the mirror alone.
func (s *Session) apply(ctx context.Context, m mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := logging.FromContext(ctx)

	switch st := s.state.(type) {
	case Guest:
		return m.local(ctx)

	case Authenticated:
		err := m.remote(ctx, st.Token)
		if err == nil {
			if serr := s.sync(ctx, st); serr != nil {
				l.Warn("cart_sync_after_mutation_failed", "op", m.name, "error", serr)
				return m.local(ctx)
			}
			return nil
		}

		switch classify(ctx, err) {
		case outcomeUnauthorized:
			l.Warn("cart_session_expired", "op", m.name, "user_id", st.UserID)
			if serr := s.setState(ctx, Guest{}); serr != nil {
				return serr
			}
			s.stale = false
			return m.local(ctx)
		case outcomeFallback:
			l.Warn("cart_api_unavailable_fallback", "op", m.name, "user_id", st.UserID, "error", err)
			s.stale = true
			return m.local(ctx)
		default:
			return fmt.Errorf("%s: %w", m.name, err)
		}

	default:
		return fmt.Errorf("unknown session state %T", st)
	}
}

func (s *Session) setState(ctx context.Context, st State) error {
	if s.sessions != nil {
		if err := s.sessions.SaveSession(ctx, st); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	s.state = st
	return nil
}

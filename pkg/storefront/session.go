package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/coffeemania/pkg/cartclient"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrNotInCart        = errors.New("product is not in the cart")
	ErrEmptyCart        = errors.New("cart is empty")
)

// API is the part of the server the session talks to.
type API interface {
	Login(ctx context.Context, login, password string) (*cartclient.AuthResult, error)
	GetCart(ctx context.Context, token string) (*cartclient.Cart, error)
	AddToCart(ctx context.Context, token string, productID uint, qty int) (*cartclient.CartItem, error)
	UpdateCartItem(ctx context.Context, token string, productID uint, qty int) (*cartclient.CartItem, bool, error)
	RemoveFromCart(ctx context.Context, token string, productID uint) (bool, error)
	ClearCart(ctx context.Context, token string) (bool, error)
}

// ProductRef is what the storefront knows about a product it displays.
type ProductRef struct {
	ID    uint
	Name  string
	Price decimal.Decimal
	Image string
}

// View is the cart as presented to the user.
type View struct {
	Entries     []MirrorEntry
	TotalAmount decimal.Decimal
	TotalItems  int
	// Stale is set while the mirror holds changes the server has not confirmed.
	Stale bool
}

type OrderSummary struct {
	Reference   string
	Entries     []MirrorEntry
	TotalAmount decimal.Decimal
	TotalItems  int
	PlacedAt    time.Time
}

// Session presents one logical cart whatever the authentication state.
// Callers drive it sequentially; the mutex only keeps state transitions whole.
type Session struct {
	mu       sync.Mutex
	state    State
	stale    bool
	mirror   *Mirror
	api      API
	sessions SessionStore
}

// NewSession starts from the persisted state when sessions is non-nil, else as Guest.
func NewSession(ctx context.Context, api API, mirror *Mirror, sessions SessionStore) (*Session, error) {
	s := &Session{state: Guest{}, mirror: mirror, api: api, sessions: sessions}
	if sessions != nil {
		st, err := sessions.LoadSession(ctx)
		if err != nil {
			return nil, err
		}
		if st != nil {
			s.state = st
		}
	}
	return s, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	amount, items := s.mirror.Totals()
	return View{Entries: s.mirror.Entries(), TotalAmount: amount, TotalItems: items, Stale: s.stale}
}

// Login authenticates and replaces the mirror with the server cart.
// Entries collected as a guest are discarded.
func (s *Session) Login(ctx context.Context, login, password string) error {
	res, err := s.api.Login(ctx, login, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return s.Resume(ctx, Authenticated{UserID: res.User.ID, Token: res.Token})
}

// Resume enters an already issued session and syncs from the server.
// When the server cannot be reached the mirror is emptied and marked stale:
// entries from a previous state never survive into the new one.
func (s *Session) Resume(ctx context.Context, st Authenticated) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setState(ctx, st); err != nil {
		return err
	}
	err := s.sync(ctx, st)
	if err == nil || errors.Is(err, cartclient.ErrUnauthorized) {
		return err
	}
	logging.FromContext(ctx).Warn("resume_sync_failed", "user_id", st.UserID, "error", err)
	if cerr := s.mirror.Clear(ctx); cerr != nil {
		return cerr
	}
	s.stale = true
	return nil
}

// Logout returns to Guest and empties the mirror.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setState(ctx, Guest{}); err != nil {
		return err
	}
	s.stale = false
	return s.mirror.Clear(ctx)
}

// Sync overwrites the mirror with the server cart.
func (s *Session) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state.(Authenticated)
	if !ok {
		return ErrNotAuthenticated
	}
	return s.sync(ctx, st)
}

func (s *Session) sync(ctx context.Context, st Authenticated) error {
	cart, err := s.api.GetCart(ctx, st.Token)
	if errors.Is(err, cartclient.ErrUnauthorized) {
		if serr := s.setState(ctx, Guest{}); serr != nil {
			return serr
		}
		return fmt.Errorf("sync: %w", err)
	}
	if err != nil {
		s.stale = true
		return fmt.Errorf("sync: %w", err)
	}
	if err := s.mirror.Replace(ctx, cart); err != nil {
		return err
	}
	s.stale = false
	return nil
}

func (s *Session) AddItem(ctx context.Context, p ProductRef, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return s.apply(ctx, mutation{
		name: "add",
		local: func(ctx context.Context) error {
			return s.mirror.Add(ctx, MirrorEntry{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}, qty)
		},
		remote: func(ctx context.Context, token string) error {
			_, err := s.api.AddToCart(ctx, token, p.ID, qty)
			return err
		},
	})
}

// ChangeQuantity moves a displayed product's quantity by delta. A result <= 0
// removes the line; anything else is written as the new quantity.
func (s *Session) ChangeQuantity(ctx context.Context, productID uint, delta int) error {
	cur, ok := s.mirror.Quantity(productID)
	if !ok {
		return ErrNotInCart
	}
	candidate := cur + delta
	if candidate <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	return s.apply(ctx, mutation{
		name:  "change",
		local: func(ctx context.Context) error { return s.mirror.Change(ctx, productID, delta) },
		remote: func(ctx context.Context, token string) error {
			_, _, err := s.api.UpdateCartItem(ctx, token, productID, candidate)
			return err
		},
	})
}

func (s *Session) RemoveItem(ctx context.Context, productID uint) error {
	return s.apply(ctx, mutation{
		name:  "remove",
		local: func(ctx context.Context) error { return s.mirror.Remove(ctx, productID) },
		remote: func(ctx context.Context, token string) error {
			_, err := s.api.RemoveFromCart(ctx, token, productID)
			return err
		},
	})
}

func (s *Session) ClearCart(ctx context.Context) error {
	return s.apply(ctx, mutation{
		name:  "clear",
		local: s.mirror.Clear,
		remote: func(ctx context.Context, token string) error {
			_, err := s.api.ClearCart(ctx, token)
			return err
		},
	})
}

// Checkout confirms the current cart and empties it. Nothing is stored server side.
func (s *Session) Checkout(ctx context.Context) (*OrderSummary, error) {
	if _, ok := s.State().(Authenticated); ok {
		if err := s.Sync(ctx); err != nil {
			logging.FromContext(ctx).Warn("checkout_sync_failed", "error", err)
		}
	}

	v := s.View()
	if len(v.Entries) == 0 {
		return nil, ErrEmptyCart
	}
	summary := &OrderSummary{
		Reference:   uuid.NewString(),
		Entries:     v.Entries,
		TotalAmount: v.TotalAmount,
		TotalItems:  v.TotalItems,
		PlacedAt:    time.Now().UTC(),
	}
	if err := s.ClearCart(ctx); err != nil {
		return nil, err
	}
	return summary, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Skotchmaster/coffeemania/pkg/events"
	pkghash "github.com/Skotchmaster/coffeemania/pkg/hash"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/pkg/tokens"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/models"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/transport"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrPrivacyPolicy      = errors.New("privacy policy must be accepted")
	ErrConflict           = errors.New("user with this login, email or phone already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

const DefaultTokenTTL = 7 * 24 * time.Hour

type Repository interface {
	UserExists(ctx context.Context, login, email, phone string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
}

type AuthService struct {
	Repo      Repository
	Events    events.Publisher
	JWTSecret []byte
	TokenTTL  time.Duration
}

func New(r Repository, pub events.Publisher, secret []byte, ttl time.Duration) *AuthService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{Repo: r, Events: pub, JWTSecret: secret, TokenTTL: ttl}
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "login", req.Login)

	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateRegister(req); err != nil {
		return nil, err
	}
	if !req.PrivacyPolicy {
		return nil, ErrPrivacyPolicy
	}

	exists, err := s.Repo.UserExists(ctx, req.Login, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		l.Warn("register_conflict")
		return nil, ErrConflict
	}

	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Email:        req.Email,
		Login:        req.Login,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, ErrConflict
		}
		return nil, err
	}
	l.Info("user_registered", "user_id", user.ID)

	evt := events.NewUserEvent(events.UserRegistered, user.ID, user.Login)
	if err := s.Events.Publish(ctx, events.TopicUsers, evt.Key(), evt); err != nil {
		l.Warn("publish_failed", "event", evt.Type, "error", err)
	}

	return s.issue(&user)
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "login", login)

	if strings.TrimSpace(login) == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", ErrValidation)
	}

	user, err := s.Repo.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown login")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(u *models.User) (*transport.AuthResponse, error) {
	token, err := tokens.NewAccessToken(s.JWTSecret, u.ID, u.Login, u.Email, time.Now().Add(s.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &transport.AuthResponse{
		Token: token,
		User: transport.UserResponse{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
			Email:     u.Email,
			Login:     u.Login,
		},
	}, nil
}

func validateRegister(req transport.RegisterRequest) error {
	switch {
	case req.Login == "":
		return fmt.Errorf("%w: login is required", ErrValidation)
	case len(req.Login) > 50:
		return fmt.Errorf("%w: login is too long", ErrValidation)
	case req.Phone == "" || len(req.Phone) > 20:
		return fmt.Errorf("%w: phone is required and must be at most 20 characters", ErrValidation)
	case len(req.Password) < 6:
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	case len(req.FirstName) > 50 || len(req.LastName) > 50:
		return fmt.Errorf("%w: name is too long", ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil || len(req.Email) > 100 {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	return nil
}

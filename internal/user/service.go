package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"danceslot/internal/apperror"
	"danceslot/internal/auth"
	"danceslot/internal/logger"
	"danceslot/internal/metrics"
	"danceslot/internal/validate"
)

var (
	ErrUserNotFound = apperror.NotFound("User not found")
	ErrEmailTaken   = apperror.New(http.StatusConflict, "Email is already registered")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	// Authenticate checks dancer credentials for the login endpoint.
	Authenticate(ctx context.Context, email, password string) (auth.Identity, error)
	Get(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error)
}

type service struct {
	repo       Repository
	tokens     *auth.Tokens
	adminEmail string
}

// NewService builds the account service. adminEmail is reserved for the
// studio administrator and cannot be registered.
func NewService(repo Repository, tokens *auth.Tokens, adminEmail string) Service {
	return &service{
		repo:       repo,
		tokens:     tokens,
		adminEmail: auth.NormalizeEmail(adminEmail),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = auth.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	if s.adminEmail != "" && req.Email == s.adminEmail {
		return nil, ErrEmailTaken
	}
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         auth.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(created.Identity())
	if err != nil {
		return nil, err
	}

	metrics.RecordAccountEvent("registered")
	logger.Info("User registered", "user_id", created.ID)
	return &AuthResponse{TokenPair: pair, User: created}, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (auth.Identity, error) {
	u, err := s.repo.GetByEmail(ctx, auth.NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		metrics.RecordAccountEvent("login_failed")
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.Identity{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		metrics.RecordAccountEvent("login_failed")
		return auth.Identity{}, auth.ErrInvalidCredentials
	}

	metrics.RecordAccountEvent("login")
	return u.Identity(), nil
}

func (s *service) Get(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p := Profile{Name: current.Name, Phone: current.Phone}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		p.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := validate.Struct(p); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProfile(ctx, id, p)
	if err != nil {
		return nil, err
	}

	metrics.RecordAccountEvent("profile_updated")
	return updated, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sciencejournal/auth"
	"sciencejournal/models"
	"sciencejournal/repository"
)

const minPasswordLen = 8

// AuthService verwaltet Benutzerkonten und stellt Tokens aus.
type AuthService struct {
	Users    *repository.UserRepository
	Secret   string
	TokenTTL time.Duration
	Logger   *zap.Logger
}

func NewAuthService(users *repository.UserRepository, secret string, ttl time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{Users: users, Secret: secret, TokenTTL: ttl, Logger: logger}
}

// Session ist das Ergebnis einer erfolgreichen Anmeldung.
type Session struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      *models.ScienceUser `json:"user"`
}

func (s *AuthService) issue(user *models.ScienceUser) (*Session, error) {
	token, err := auth.GenerateToken(s.Secret, user.ID, user.Email, s.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: time.Now().Add(s.TokenTTL), User: user}, nil
}

// Register legt ein normales Benutzerkonto an und meldet es direkt an.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidArgument)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidArgument, minPasswordLen)
	}
	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := s.createUser(ctx, email, password, false)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("User registered", zap.String("email", user.Email))
	return s.issue(user)
}

func (s *AuthService) createUser(ctx context.Context, email, password string, admin bool) (*models.ScienceUser, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.ScienceUser{Email: email, PasswordHash: hash, IsAdmin: admin}
	if err := s.Users.Create(ctx, user); err != nil {
		// gleichzeitige Registrierung derselben Adresse
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fromRepo(err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		s.Logger.Warn("Failed login attempt", zap.String("email", user.Email))
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.ScienceUser, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err)
	}
	return user, nil
}

// Principal lädt den Benutzer bei jeder Anfrage neu, damit entzogene
// Adminrechte sofort wirken.
func (s *AuthService) Principal(ctx context.Context, userID uuid.UUID) (*auth.Principal, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return auth.FromUser(user), nil
}

// SeedAdmin legt das Administratorkonto an, falls es noch nicht existiert.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.Logger.Info("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}
	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.createUser(ctx, email, password, true); err != nil {
		return err
	}
	s.Logger.Info("Seeded administrator account", zap.String("email", email))
	return nil
}

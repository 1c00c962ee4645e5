package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the fixed validity window of issued tokens.
const TokenTTL = time.Hour

// Claims is the payload of an issued token. Subject holds the user ID.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject %q", ErrUnauthorized, c.Subject)
	}
	return uint(id), nil
}

// AuthToken is a signed token and the UTC instant it stops being valid.
type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	events    EventPublisher
	jwtSecret []byte
	issuer    string
	audience  string
	now       func() time.Time
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithClock replaces the time source used for issuing and checking tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithAuthEvents publishes user.registered after each registration.
func WithAuthEvents(p EventPublisher) AuthOption {
	return func(s *AuthService) { s.events = p }
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg config.JWTConfig, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.Key),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUser registers a new user, hashes their password, and saves them to the database.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	username, email, err := checkUserFields(username, email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	// Check if username or email already exists
	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %w", ErrInternal, err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can still lose the race at the unique index.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("%w: failed to register user: %w", ErrInternal, err)
	}

	publishEvent(ctx, s.events, EventUserRegistered, user)
	return user, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return fmt.Errorf("%w: username '%s' already taken", ErrConflict, username)
	} else if !errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: email '%s' already registered", ErrConflict, email)
	} else if !errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return nil
}

// LoginUser authenticates a user and returns a signed token if successful.
// Unknown usernames and wrong passwords yield the same error. The username is
// trimmed as on registration; the password is taken verbatim.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (*AuthToken, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	now := s.now().UTC()
	claims := Claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate token: %w", ErrInternal, err)
	}

	return &AuthToken{Token: tokenString, ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}

// ValidateToken parses and validates a token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %w", ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

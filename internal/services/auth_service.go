package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fittrack/internal/events"
	"fittrack/internal/models"
	"fittrack/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeMailer sends the sign-up email. *notify.ResendMailer implements it.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, email string) error
}

// AuthConfig holds token and password-hashing settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// Session is an authenticated identity and the token that proves it.
type Session struct {
	Token     string      `json:"token,omitempty"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Claims are the fields fittrack reads from a validated token.
type Claims struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// AuthService handles sign-up, sign-in, sign-out and session lookup.
type AuthService struct {
	userRepo   repositories.UserRepository
	tokenRepo  repositories.TokenRepository
	sessions   *SessionStore
	mailer     WelcomeMailer
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService. sessions receives every change of
// authentication state.
func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, sessions *SessionStore, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		sessions:   sessions,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

// SetMailer enables the welcome email on sign-up.
func (s *AuthService) SetMailer(m WelcomeMailer) {
	s.mailer = m
}

// Sessions returns the store that receives session events.
func (s *AuthService) Sessions() *SessionStore {
	return s.sessions
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new user and signs them in.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hashed)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(events.SignedUp, user)
	s.sendWelcome(user.Email)
	return session, nil
}

// SignIn authenticates by email and password. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Sign-in lookup failed: %v", err)
		}
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(events.SignedIn, user)
	return session, nil
}

// SignOut revokes the token so it is refused from now on.
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return err
	}
	err = s.tokenRepo.Revoke(ctx, &models.RevokedToken{
		ID:        claims.TokenID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt,
	})
	if err != nil {
		return err
	}
	s.publish(events.SignedOut, &models.User{ID: claims.UserID, Email: claims.Email})
	return nil
}

// CurrentSession returns the session proven by tokenString.
func (s *AuthService) CurrentSession(ctx context.Context, tokenString string) (*Session, error) {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	return &Session{User: *user, ExpiresAt: claims.ExpiresAt}, nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"jti":     uuid.New().String(),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{Token: tokenString, User: *user, ExpiresAt: time.Unix(expiresAt.Unix(), 0)}, nil
}

// ValidateToken parses and validates a JWT, refusing revoked tokens.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	claims.UserID, _ = mc["user_id"].(string)
	claims.Email, _ = mc["email"].(string)
	claims.TokenID, _ = mc["jti"].(string)
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if claims.UserID == "" || claims.TokenID == "" || claims.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: signed out", ErrInvalidToken)
	}
	return claims, nil
}

func (s *AuthService) publish(kind string, user *models.User) {
	if s.sessions == nil {
		return
	}
	s.sessions.Publish(SessionEvent{Type: kind, UserID: user.ID, Email: user.Email})
}

func (s *AuthService) sendWelcome(email string) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendWelcome(ctx, email); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", email, err)
		}
	}()
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/argon2"

	"github.com/keyxmakerx/reverie/internal/apperror"
)

const sessionKeyPrefix = "session:"

// 32 random bytes, hex-encoded to 64 characters.
const sessionTokenBytes = 32

// argon2id parameters (OWASP baseline for modest self-hosted hardware).
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

const maxPasswordLen = 128

// AuthService is the login gate used by handlers and RequireAuth.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)
	ValidateSession(ctx context.Context, token string) (*Session, error)
	DestroySession(ctx context.Context, token string) error
	EnsureUser(ctx context.Context, email string) (*User, error)
}

type authService struct {
	repo       UserRepository
	redis      *redis.Client
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates the auth service.
func NewAuthService(repo UserRepository, rdb *redis.Client, sessionTTL time.Duration) AuthService {
	return &authService{
		repo:       repo,
		redis:      rdb,
		sessionTTL: sessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// normalizeEmail lower-cases and validates an address. Display-name forms
// ("Ana <ana@x>") are rejected.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > 255 {
		return "", apperror.NewValidation("please enter a valid email address")
	}
	return email, nil
}

// Login signs in with email and password. An unknown email is provisioned
// on the spot with this password; a known one must match its stored hash.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return "", nil, err
	}
	if input.Password == "" {
		return "", nil, apperror.NewValidation("please enter a password")
	}
	if len(input.Password) > maxPasswordLen {
		return "", nil, apperror.NewValidation("password is too long")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case apperror.IsNotFound(err):
		user, err = s.provision(ctx, email, input.Password)
		if err != nil {
			return "", nil, err
		}
	case err != nil:
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	case user.PasswordHash == "":
		if err := s.claim(ctx, user, input.Password); err != nil {
			return "", nil, err
		}
	default:
		if !verifyPassword(input.Password, user.PasswordHash) {
			return "", nil, apperror.NewUnauthorized("invalid email or password")
		}
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, user, nil
}

// provision creates the account on first sign-in. If a concurrent request
// created it first, the password is checked against that row instead.
func (s *authService) provision(ctx context.Context, email, password string) (*User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  GreetingName(email),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		existing, findErr := s.repo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
		}
		if !verifyPassword(password, existing.PasswordHash) {
			return nil, apperror.NewUnauthorized("invalid email or password")
		}
		return existing, nil
	}

	slog.Info("account provisioned", slog.String("user_id", user.ID))
	return user, nil
}

// claim sets the first password on an account created by EnsureUser.
func (s *authService) claim(ctx context.Context, user *User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperror.NewInternal(fmt.Errorf("setting password: %w", err))
	}
	user.PasswordHash = hash
	return nil
}

// EnsureUser returns the account for email, creating one with an unusable
// password when missing. The admin CLI uses it to import a journal for a
// person who has not signed in yet; their first login sets the password.
func (s *authService) EnsureUser(ctx context.Context, email string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	user = &User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: GreetingName(email),
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}
	return user, nil
}

// ValidateSession returns the session stored under token.
func (s *authService) ValidateSession(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading session from redis: %w", err))
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("decoding session: %w", err))
	}
	return &session, nil
}

// DestroySession deletes the session; deleting a missing one is not an error.
func (s *authService) DestroySession(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting session from redis: %w", err))
	}
	return nil
}

func (s *authService) createSession(ctx context.Context, user *User) (string, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}

	data, err := json.Marshal(Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.DisplayName,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKeyPrefix+token, data, s.sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("storing session in redis: %w", err)
	}
	return token, nil
}

// hashPassword returns a PHC-format argon2id string:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// verifyPassword checks password against a PHC argon2id string. An empty
// or malformed hash (an imported account that never signed in) never
// matches.
func verifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, computed) == 1
}

func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/redisx"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Service handles signup/login and Redis-backed session tokens. The domain
// core never sees any of this: it only receives the user ID the middleware
// resolved.
type Service struct {
	Store      shop.Ledger
	Redis      *redis.Client
	SessionTTL time.Duration
}

type SignUpInput struct {
	FirstName string
	LastName  string
	Username  string
	Address   string
	Phone     string
	Email     string
	Password  string
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*shop.User, error) {
	if in.Email == "" || in.Password == "" || in.Username == "" {
		return nil, &shop.ValidationError{Field: "signup", Reason: "email, username and password are required"}
	}
	if _, err := s.Store.UserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, shop.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &shop.User{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Password:  string(hash),
		Role:      "user",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LogIn verifies the password and mints a session token with a TTL.
func (s *Service) LogIn(ctx context.Context, email, password string) (string, *shop.User, error) {
	u, err := s.Store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.Redis.Set(ctx, key, u.ID, s.SessionTTL).Err(); err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) LogOut(ctx context.Context, token string) error {
	return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeySession, token)).Err()
}

// UserID resolves a session token to the acting user's ID.
func (s *Service) UserID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	id, err := s.Redis.Get(ctx, fmt.Sprintf(redisx.KeySession, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// IsAdmin checks the stored role for the resolved user.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	u, err := s.Store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Role == "admin", nil
}

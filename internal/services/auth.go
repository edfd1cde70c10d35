package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tareas/internal/models"
	"tareas/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

type RegistrationRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthToken is the bearer credential handed to a client after register or
// login.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

type AuthService interface {
	Register(ctx context.Context, req RegistrationRequest) (AuthToken, error)
	Login(ctx context.Context, req LoginRequest) (AuthToken, error)
	Authenticate(ctx context.Context, token string) (models.User, error)
}

type AuthServiceImpl struct {
	users      repositories.UserStore
	tokens     *TokenIssuer
	bcryptCost int
}

func NewAuthService(users repositories.UserStore, tokens *TokenIssuer, bcryptCost int) *AuthServiceImpl {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthServiceImpl) Register(ctx context.Context, req RegistrationRequest) (AuthToken, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if err := validateStruct(req); err != nil {
		return AuthToken{}, err
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return AuthToken{}, emailTaken()
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return AuthToken{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// max=72 counts characters; multi-byte passwords can still overflow.
		return AuthToken{}, passwordTooLong()
	}
	if err != nil {
		return AuthToken{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return AuthToken{}, emailTaken()
		}
		return AuthToken{}, err
	}

	return s.issue(user)
}

func (s *AuthServiceImpl) Login(ctx context.Context, req LoginRequest) (AuthToken, error) {
	req.Email = normalizeEmail(req.Email)

	if err := validateStruct(req); err != nil {
		return AuthToken{}, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return AuthToken{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthToken{}, err
	}

	if !VerifyPassword(user.Password, req.Password) {
		return AuthToken{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, fmt.Errorf("%w: unknown user %s", ErrUnauthenticated, userID)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthServiceImpl) issue(user models.User) (AuthToken, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthToken{}, err
	}
	return AuthToken{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func passwordTooLong() error {
	verr := NewValidationError()
	verr.Add("password", fmt.Sprintf("The password field must not be greater than %d bytes.", MaxPasswordLength))
	return verr
}

func emailTaken() error {
	verr := NewValidationError()
	verr.Add("email", "The email has already been taken.")
	return verr
}

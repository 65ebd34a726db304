package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"sheesh.app/server/internal/entity"
	"sheesh.app/server/internal/modules/user/dto"
	"sheesh.app/server/internal/modules/user/repository"
	"sheesh.app/server/pkg/apperror"
)

var errInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid username or password", apperror.ErrUnauthorized)

// PublicGroupJoiner puts a freshly registered user into the public community group.
type PublicGroupJoiner interface {
	JoinPublicGroup(ctx context.Context, userID uint) error
}

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	groups   PublicGroupJoiner
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(repo repository.UserRepository, groups PublicGroupJoiner, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		groups:   groups,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if err := ensureAvailable(ctx, s.repo, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    normalizeOptional(input.FirstName),
		LastName:     normalizeOptional(input.LastName),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "username or email already registered", apperror.ErrConflict)
		}
		return nil, err
	}
	log.Printf("👤 User %d (%s) registered", user.ID, user.Username)

	if s.groups != nil {
		if err := s.groups.JoinPublicGroup(ctx, user.ID); err != nil {
			log.Printf("⚠️ Failed to add user %d to the public group: %v", user.ID, err)
		}
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, error) {
	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// ensureAvailable reports a 409 when username or email already belong to someone. Empty
// arguments are skipped.
func ensureAvailable(ctx context.Context, repo repository.UserRepository, username, email string) error {
	if username != "" {
		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return apperror.New(http.StatusConflict, "username already taken", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if email != "" {
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return apperror.New(http.StatusConflict, "email already registered", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

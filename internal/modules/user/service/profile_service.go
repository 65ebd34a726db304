package service

import (
	"context"
	"errors"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"sheesh.app/server/internal/modules/user/dto"
	"sheesh.app/server/internal/modules/user/repository"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/storage"
)

var errUserNotFound = apperror.New(http.StatusNotFound, "user not found", apperror.ErrNotFound)

type ProfileService interface {
	GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error)
	// UpdateProfile applies input and, when avatar is given, replaces the stored avatar.
	UpdateProfile(ctx context.Context, userID uint, input dto.UpdateProfileInput, avatar *dto.AvatarFile) (*dto.UserResponse, error)
}

type profileService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
	sanitizer    *bluemonday.Policy
}

// NewProfileService builds the profile service. imageStorage may be nil when avatar uploads are
// not configured.
func NewProfileService(repo repository.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uint, input dto.UpdateProfileInput, avatar *dto.AvatarFile) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = s.cleanPtr(input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = s.cleanPtr(input.LastName)
	}
	if input.DisplayName != nil {
		user.DisplayName = s.cleanPtr(input.DisplayName)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != "" && email != user.Email {
			if err := ensureAvailable(ctx, s.repo, "", email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.IsPrivate != nil {
		user.IsPrivate = *input.IsPrivate
	}

	var oldAvatar *string
	if avatar != nil && avatar.Reader != nil {
		if s.imageStorage == nil {
			return nil, apperror.New(http.StatusBadRequest, "avatar uploads are not available", apperror.ErrBadRequest)
		}
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		oldAvatar = user.AvatarURL
		user.AvatarURL = &url
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "email already registered", apperror.ErrConflict)
		}
		return nil, err
	}
	log.Printf("👤 User %d updated their profile (private=%t)", user.ID, user.IsPrivate)

	if oldAvatar != nil && *oldAvatar != "" {
		if err := s.imageStorage.DeleteImage(ctx, *oldAvatar); err != nil {
			log.Printf("Failed to delete old avatar of user %d: %v", user.ID, err)
		}
	}

	return dto.NewUserResponse(user), nil
}

func (s *profileService) cleanPtr(value *string) *string {
	cleaned := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(*value)))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

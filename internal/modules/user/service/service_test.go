package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sheesh.app/server/internal/modules/user/dto"
	"sheesh.app/server/internal/modules/user/repository"
	"sheesh.app/server/internal/testutil"
	"sheesh.app/server/pkg/apperror"
)

const testSecret = "test-secret"

type fakeJoiner struct {
	joined []uint
	err    error
}

func (f *fakeJoiner) JoinPublicGroup(_ context.Context, userID uint) error {
	f.joined = append(f.joined, userID)
	return f.err
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://res.cloudinary.com/demo/image/upload/v1/sheesh/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func strPtr(s string) *string { return &s }

func register(t *testing.T, svc AuthService, username string) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), dto.RegisterInput{
		Username:  username,
		Email:     strings.ToUpper(username) + "@Example.com",
		Password:  "correct horse",
		FirstName: strPtr("  Ada "),
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	db := testutil.NewDB(t)
	joiner := &fakeJoiner{}
	svc := NewAuthService(repository.NewUserRepository(db), joiner, testSecret, time.Hour)

	resp := register(t, svc, "ada")

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.EqualValues(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "ada", resp.User.Username)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	require.NotNil(t, resp.User.FirstName)
	assert.Equal(t, "Ada", *resp.User.FirstName)
	assert.Equal(t, []uint{resp.User.ID}, joiner.joined)

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestRegister_Duplicates(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), nil, testSecret, time.Hour)
	register(t, svc, "ada")

	_, err := svc.Register(context.Background(), dto.RegisterInput{Username: "ada", Email: "other@example.com", Password: "12345678"})
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.EqualError(t, err, apperror.ErrConflict.Error())

	_, err = svc.Register(context.Background(), dto.RegisterInput{Username: "grace", Email: "ada@example.com", Password: "12345678"})
	require.ErrorIs(t, err, apperror.ErrConflict)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "email already registered", appErr.Message)
}

func TestRegister_PublicGroupFailureIsNotFatal(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), &fakeJoiner{err: errors.New("boom")}, testSecret, time.Hour)

	resp := register(t, svc, "ada")
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), nil, testSecret, time.Hour)
	register(t, svc, "ada")

	resp, err := svc.Login(context.Background(), dto.LoginInput{Username: "ada", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada", resp.User.Username)

	_, err = svc.Login(context.Background(), dto.LoginInput{Username: "ada", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(context.Background(), dto.LoginInput{Username: "nobody", Password: "correct horse"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	user := testutil.CreateUser(t, db, "ada", false)
	testutil.CreateUser(t, db, "grace", false)
	images := &fakeStorage{}
	svc := NewProfileService(repo, images)
	ctx := context.Background()

	resp, err := svc.UpdateProfile(ctx, user.ID, dto.UpdateProfileInput{
		DisplayName: strPtr("<b>Countess</b>"),
		IsPrivate:   func() *bool { b := true; return &b }(),
	}, &dto.AvatarFile{Reader: strings.NewReader("png"), FileName: "me.png"})
	require.NoError(t, err)
	require.NotNil(t, resp.DisplayName)
	assert.Equal(t, "Countess", *resp.DisplayName)
	assert.True(t, resp.IsPrivate)
	require.NotNil(t, resp.AvatarURL)
	assert.Empty(t, images.deleted)

	_, err = svc.UpdateProfile(ctx, user.ID, dto.UpdateProfileInput{}, &dto.AvatarFile{Reader: strings.NewReader("png"), FileName: "new.png"})
	require.NoError(t, err)
	assert.Equal(t, images.uploaded[:1], images.deleted)

	_, err = svc.UpdateProfile(ctx, user.ID, dto.UpdateProfileInput{Email: strPtr("grace@example.com")}, nil)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	cleared, err := svc.UpdateProfile(ctx, user.ID, dto.UpdateProfileInput{DisplayName: strPtr("  ")}, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.DisplayName)

	stored, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPrivate)
	assert.Nil(t, stored.DisplayName)
}

func TestUpdateProfile_AvatarWithoutStorage(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ada", false)
	svc := NewProfileService(repository.NewUserRepository(db), nil)

	_, err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileInput{}, &dto.AvatarFile{Reader: strings.NewReader("x"), FileName: "a.png"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestGetProfile_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProfileService(repository.NewUserRepository(db), nil)

	_, err := svc.GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

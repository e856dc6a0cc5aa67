package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"palearn_backend/internal/model"
	"palearn_backend/internal/repository"
	"palearn_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	userRepo *repository.UserRepository
	storage  StorageProvider
}

func NewUserService(userRepo *repository.UserRepository, storage StorageProvider) *UserService {
	return &UserService{userRepo: userRepo, storage: storage}
}

func (s *UserService) Profile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Birth string `json:"birth"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Birth != "" {
		user.Birth = req.Birth
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores the image and records its URL on the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("avatars/%d-%d%s", userID, time.Now().UnixNano(), filepath.Ext(filename))
	avatarURL, err := s.storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}

	user.Avatar = avatarURL
	if err := s.userRepo.Update(user); err != nil {
		return "", err
	}
	return avatarURL, nil
}

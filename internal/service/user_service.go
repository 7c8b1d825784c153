package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/internal/model"
	"github.com/sketchtalk/sketchtalk/internal/repository"
	"github.com/sketchtalk/sketchtalk/pkg/apperror"
	"gorm.io/gorm"
)

type UserService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	GetUserByUsername(ctx context.Context, username string) (*dto.UserResponse, error)
	GetUsers(ctx context.Context) ([]*dto.UserResponse, error)
	DisableUser(ctx context.Context, userID uuid.UUID, requestingUserID uuid.UUID) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	return mapUserToResponse(user, true), nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s does not exist: %w", username, apperror.ErrNotFound)
		}
		return nil, err
	}
	return mapUserToResponse(user, false), nil
}

func (s *userService) GetUsers(ctx context.Context) ([]*dto.UserResponse, error) {
	users, err := s.repo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.UserResponse, len(users))
	for i, user := range users {
		responses[i] = mapUserToResponse(user, false)
	}
	return responses, nil
}

// DisableUser soft-locks an account. Admin only, and admins cannot disable
// themselves.
func (s *userService) DisableUser(ctx context.Context, userID uuid.UUID, requestingUserID uuid.UUID) error {
	requester, err := s.findUser(ctx, requestingUserID.String())
	if err != nil {
		return err
	}
	if !requester.HasAdminRole() || requestingUserID == userID {
		return fmt.Errorf("only an admin can disable another user's account: %w", apperror.ErrForbidden)
	}

	user, err := s.findUser(ctx, userID.String())
	if err != nil {
		return err
	}

	user.Disable()
	return s.repo.Update(ctx, user)
}

func (s *userService) findUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s does not exist: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

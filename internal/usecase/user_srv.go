package usecase

import (
	"context"
	"fmt"
	"strings"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/data/repository"
	"ski-portal/internal/dto/request"
	"ski-portal/internal/dto/response"
	"ski-portal/internal/gravatar"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	SetAdmin(ctx context.Context, actorID, targetID string, isAdmin bool) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, targetID string) error

	// PromoteByEmail grants the admin flag without an acting admin. Used by
	// the CLI to bootstrap the first administrator.
	PromoteByEmail(ctx context.Context, email string) (*response.UserResponse, error)
}

type userService struct {
	repo    *repository.Repository
	avatars *gravatar.Generator
	log     *zap.Logger
}

func NewUserService(repo *repository.Repository, avatars *gravatar.Generator, log *zap.Logger) UserService {
	return &userService{
		repo:    repo,
		avatars: avatars,
		log:     log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		us.log.Warn("Invalid user ID", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("invalid user ID")
	}

	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get profile")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	reviewCount, err := us.repo.Review.CountByUserID(ctx, id)
	if err != nil {
		us.log.Error("Failed to count user reviews", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get profile")
	}

	resp := response.UserToResponse(user, us.avatars)
	resp.ReviewCount = reviewCount
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	users, err := us.repo.User.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("failed to get users")
	}

	total, err := us.repo.User.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("failed to count users")
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user, us.avatars)
	}

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

func (us *userService) SetAdmin(ctx context.Context, actorID, targetID string, isAdmin bool) (*response.UserResponse, error) {
	actor, target, err := us.parseActorAndTarget(actorID, targetID)
	if err != nil {
		return nil, err
	}

	if actor == target && !isAdmin {
		return nil, fmt.Errorf("forbidden: admins cannot remove their own admin access")
	}

	user, err := us.setAdmin(ctx, target, isAdmin)
	if err != nil {
		return nil, err
	}

	us.log.Info("Admin flag changed",
		zap.String("actor_id", actorID),
		zap.String("user_id", targetID),
		zap.Bool("is_admin", isAdmin),
	)

	resp := response.UserToResponse(user, us.avatars)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	actor, target, err := us.parseActorAndTarget(actorID, targetID)
	if err != nil {
		return err
	}

	if actor == target {
		return fmt.Errorf("forbidden: admins cannot delete their own account")
	}

	user, err := us.repo.User.FindByID(ctx, target)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", targetID))
		return fmt.Errorf("failed to delete user")
	}
	if user == nil {
		return fmt.Errorf("user %s not found", targetID)
	}

	reviewed, err := us.repo.Review.ResortIDsByUser(ctx, target)
	if err != nil {
		us.log.Error("Failed to list reviewed resorts", zap.Error(err), zap.String("user_id", targetID))
		return fmt.Errorf("failed to delete user")
	}

	if err := us.repo.User.Delete(ctx, target); err != nil {
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", targetID))
		return fmt.Errorf("failed to delete user")
	}

	if err := us.repo.Session.RevokeAllUserSessions(ctx, target); err != nil {
		us.log.Warn("Failed to revoke sessions of deleted user",
			zap.Error(err), zap.String("user_id", targetID))
	}

	// Their reviews drop out of the aggregates; the nightly resync catches
	// any resort that fails here.
	for _, resortID := range reviewed {
		if _, err := refreshResortRating(ctx, us.repo, resortID); err != nil {
			us.log.Warn("Failed to refresh resort rating after user deletion",
				zap.Error(err),
				zap.String("resort_id", resortID.String()),
			)
		}
	}

	us.log.Info("User deleted", zap.String("actor_id", actorID), zap.String("user_id", targetID))
	return nil
}

func (us *userService) PromoteByEmail(ctx context.Context, email string) (*response.UserResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("validation failed: email is required")
	}

	user, err := us.repo.User.FindByEmail(ctx, email)
	if err != nil {
		us.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to find user")
	}
	if user == nil {
		return nil, fmt.Errorf("user with email %s not found", email)
	}
	if user.IsAdmin {
		return nil, fmt.Errorf("user %s is already an admin", email)
	}

	user, err = us.setAdmin(ctx, user.ID, true)
	if err != nil {
		return nil, err
	}

	us.log.Info("User promoted from CLI", zap.String("user_id", user.ID.String()))
	resp := response.UserToResponse(user, us.avatars)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (us *userService) parseActorAndTarget(actorID, targetID string) (uuid.UUID, uuid.UUID, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user ID")
	}
	target, err := uuid.Parse(targetID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user ID format %s", targetID)
	}
	return actor, target, nil
}

func (us *userService) setAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*entity.User, error) {
	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("failed to update user")
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", id.String())
	}

	if err := us.repo.User.SetAdmin(ctx, id, isAdmin); err != nil {
		us.log.Error("Failed to set admin flag", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("failed to update user")
	}

	user.IsAdmin = isAdmin
	return user, nil
}

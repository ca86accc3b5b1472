package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/util"
)

type UserService struct {
	Users  UserRepository
	Hasher hash.Hasher
	Events events.Publisher
}

// UpdateInput is a partial profile change. Nil fields are left alone.
type UpdateInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

func canManage(caller Principal, target uuid.UUID) error {
	if caller.ID == target {
		return nil
	}
	return Authorize(caller.Role, models.RoleAdmin)
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrDuplicateEmail
	default:
		return err
	}
}

// List returns the given 1-based page of users and the total user count.
func (s *UserService) List(ctx context.Context, page, size int) ([]models.User, int64, error) {
	offset, limit := util.Calculate(page, size)
	users, total, err := s.Users.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, caller Principal, id uuid.UUID, in UpdateInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update")

	if err := canManage(caller, id); err != nil {
		l.Warn("update_denied", "caller", caller.ID, "target", id)
		return nil, err
	}

	var patch models.UserPatch
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		digest, err := s.Hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &digest
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	user, err := s.Users.UpdateUser(ctx, id, patch)
	if err != nil {
		err = mapRepoErr(err)
		l.Warn("update_failed", "target", id, "error", err)
		return nil, err
	}

	if s.Events != nil {
		ev := events.Event{Type: events.TypeUserUpdated, UserID: user.ID.String(), Email: user.Email}
		if err := s.Events.Publish(ctx, user.ID.String(), ev); err != nil {
			l.Warn("event_publish_failed", "type", ev.Type, "error", err)
		}
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, caller Principal, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "users.delete")

	if err := canManage(caller, id); err != nil {
		l.Warn("delete_denied", "caller", caller.ID, "target", id)
		return err
	}
	if err := s.Users.DeleteUser(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	l.Info("user_deleted", "target", id, "caller", caller.ID)

	if s.Events != nil {
		ev := events.Event{Type: events.TypeUserDeleted, UserID: id.String()}
		if err := s.Events.Publish(ctx, id.String(), ev); err != nil {
			l.Warn("event_publish_failed", "type", ev.Type, "error", err)
		}
	}
	return nil
}

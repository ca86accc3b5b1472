package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users in creation order and the total count.
func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := r.DB.WithContext(ctx).
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CreateUser inserts u unless the email is taken. The unique index still
// guards the race between two concurrent registrations.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return ErrDuplicateEmail
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicateEmail
	}
	return nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	var out *models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]any{}
		if patch.Email != nil && *patch.Email != user.Email {
			var taken int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", *patch.Email, id).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrDuplicateEmail
			}
			updates["email"] = *patch.Email
		}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.PasswordHash != nil {
			updates["password_hash"] = *patch.PasswordHash
		}

		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrDuplicateEmail
				}
				return err
			}
			if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
				return err
			}
		}
		out = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tx := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

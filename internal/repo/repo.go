package repo

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// GormRepo backs both the user store and the revocation list.
type GormRepo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (r *GormRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

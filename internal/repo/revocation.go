package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/token"
	"gorm.io/gorm/clause"
)

func revokedRow(tokenStr string, expiresAt time.Time, kind token.Kind) models.RevokedToken {
	return models.RevokedToken{
		TokenHash: token.Digest(tokenStr),
		Kind:      string(kind),
		ExpiresAt: expiresAt.Unix(),
	}
}

// AddRevocation records tokenStr as revoked until expiresAt. Repeated
// inserts for the same token are accepted and leave the first row in place.
func (r *GormRepo) AddRevocation(ctx context.Context, tokenStr string, expiresAt time.Time, kind token.Kind) error {
	row := revokedRow(tokenStr, expiresAt, kind)
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_hash"}}, DoNothing: true}).
		Create(&row).Error
}

// ClaimRevocation inserts the entry only if the token has none yet and
// reports whether this call created it.
func (r *GormRepo) ClaimRevocation(ctx context.Context, tokenStr string, expiresAt time.Time, kind token.Kind) (bool, error) {
	row := revokedRow(tokenStr, expiresAt, kind)
	tx := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_hash"}}, DoNothing: true}).
		Create(&row)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *GormRepo) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_hash = ? AND expires_at > ?", token.Digest(tokenStr), r.now().Unix()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) PurgeExpired(ctx context.Context) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Where("expires_at < ?", r.now().Unix()).
		Delete(&models.RevokedToken{})
	return tx.RowsAffected, tx.Error
}

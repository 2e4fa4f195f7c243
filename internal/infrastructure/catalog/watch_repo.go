package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketwatch/backend/internal/domain"
)

// WatchRepo is the gorm-backed store for price watches.
type WatchRepo struct{ db *gorm.DB }

// NewWatchRepo creates a watch repository backed by the given database.
func NewWatchRepo(db *gorm.DB) *WatchRepo { return &WatchRepo{db: db} }

// Create persists a new watch.
func (r *WatchRepo) Create(ctx context.Context, watch *domain.Watch) error {
	if watch.ID == uuid.Nil {
		watch.ID = uuid.New()
	}
	if watch.CreatedAt.IsZero() {
		watch.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(watch).Error
}

// ListByUser returns a user's watches, newest first.
func (r *WatchRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Watch, error) {
	var watches []*domain.Watch
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&watches).Error; err != nil {
		return nil, err
	}
	return watches, nil
}

// ListActive returns every active watch with its product preloaded.
func (r *WatchRepo) ListActive(ctx context.Context) ([]*domain.Watch, error) {
	var watches []*domain.Watch
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("is_active = ?", true).
		Find(&watches).Error; err != nil {
		return nil, err
	}
	return watches, nil
}

// Delete removes a watch.
func (r *WatchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Watch{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrWatchNotFound
	}
	return nil
}

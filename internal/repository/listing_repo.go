package repository

import (
	"context"

	"gorm.io/gorm"

	"trendies_market_v1/internal/model"
)

// ==================== 仓储接口 ====================

// ListingRepository 商品仓储接口
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	ListByOwner(ctx context.Context, userID int64) ([]model.Listing, error)
}

// ==================== 仓储实现 ====================

type listingRepo struct {
	db *gorm.DB
}

// NewListingRepository 创建商品仓储
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// ListByOwner 按创建时间倒序，同一时刻按 ID 倒序
func (r *listingRepo) ListByOwner(ctx context.Context, userID int64) ([]model.Listing, error) {
	listings := make([]model.Listing, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

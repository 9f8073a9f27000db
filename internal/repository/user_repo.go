package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trendies_market_v1/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	UpsertBySubject(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
}

// ==================== 实现 ====================

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// UpsertBySubject 按 OAuth subject 新建或更新资料，并刷新最后登录时间
// 返回后 user.ID 为库中记录的 ID
func (r *userRepository) UpsertBySubject(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.LastLoginAt = &now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "avatar_url", "last_login_at", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return err
	}

	// 冲突更新时部分驱动不回填主键
	stored, err := r.GetBySubject(ctx, user.Subject)
	if err != nil {
		return err
	}
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	user.BaseModel = stored.BaseModel
	return nil
}

// GetByID 根据 ID 获取用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// GetBySubject 根据 OAuth subject 获取用户
func (r *userRepository) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

package repository

import (
	"context"
	"time"

	"travelbill/internal/model"
	"travelbill/pkg/errs"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID 账户必须属于请求所在旅行社，否则按不存在处理
func (r *AccountRepository) GetByID(ctx context.Context, agencyID, id int64) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("收付款账户不存在")
		}
		return nil, err
	}
	return &account, nil
}

// ApplyDelta 账户余额按 ±amount 原子增减并刷新活动时间。
// 必须与触发它的业务写入在同一个单位工作内执行
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx *gorm.DB, agencyID, id int64, delta int64) error {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	result := tx.WithContext(ctx).
		Model(&model.Account{}).
		Where("agency_id = ? AND id = ?", agencyID, id).
		UpdateColumns(map[string]interface{}{
			"last_balance": gorm.Expr("last_balance + ?", delta),
			"last_used_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("收付款账户不存在")
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context, agencyID int64) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}

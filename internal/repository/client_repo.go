package repository

import (
	"context"

	"travelbill/internal/model"
	"travelbill/pkg/errs"

	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// GetByID 按旅行社范围查询，跨租户一律按不存在处理
func (r *ClientRepository) GetByID(ctx context.Context, agencyID, id int64) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("客户不存在")
		}
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, agencyID, id int64) (*model.Client, error) {
	var client model.Client
	err := forUpdate(tx.WithContext(ctx)).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("客户不存在")
		}
		return nil, err
	}
	return &client, nil
}

// AdjustBalance 余额按差额原子增减，单条 UPDATE，不走读-改-写
func (r *ClientRepository) AdjustBalance(ctx context.Context, tx *gorm.DB, agencyID, id int64, delta int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Client{}).
		Where("agency_id = ? AND id = ?", agencyID, id).
		UpdateColumn("present_balance", gorm.Expr("present_balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("客户不存在")
	}
	return nil
}

package repository

import (
	"context"

	"travelbill/internal/model"
	"travelbill/pkg/errs"

	"gorm.io/gorm"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Create(ctx context.Context, tx *gorm.DB, receipt *model.MoneyReceipt) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(receipt).Error
}

func (r *ReceiptRepository) GetByID(ctx context.Context, agencyID, id int64) (*model.MoneyReceipt, error) {
	var receipt model.MoneyReceipt
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&receipt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("收款单不存在")
		}
		return nil, err
	}
	return &receipt, nil
}

func (r *ReceiptRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.MoneyReceipt{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("收款单不存在")
	}
	return nil
}

func (r *ReceiptRepository) Delete(ctx context.Context, tx *gorm.DB, agencyID, id int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		Delete(&model.MoneyReceipt{}).Error
}

func (r *ReceiptRepository) List(ctx context.Context, agencyID, clientID int64, page, pageSize int) ([]*model.MoneyReceipt, int64, error) {
	var receipts []*model.MoneyReceipt
	var total int64

	query := r.db.WithContext(ctx).Model(&model.MoneyReceipt{}).Where("agency_id = ?", agencyID)
	if clientID > 0 {
		query = query.Where("client_id = ?", clientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&receipts).Error

	return receipts, total, err
}

// FindInconsistent 对账任务用：allocated + remaining != amount - discount 的收款单
func (r *ReceiptRepository) FindInconsistent(ctx context.Context, limit int) ([]*model.MoneyReceipt, error) {
	var receipts []*model.MoneyReceipt
	err := r.db.WithContext(ctx).
		Where("allocated_amount + remaining_amount <> amount - discount").
		Limit(limit).
		Find(&receipts).Error
	return receipts, err
}

// ============================================================
// 核销明细
// ============================================================

func (r *ReceiptRepository) CreateAllocation(ctx context.Context, tx *gorm.DB, alloc *model.MoneyReceiptAllocation) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(alloc).Error
}

func (r *ReceiptRepository) GetAllocation(ctx context.Context, agencyID, receiptID, allocationID int64) (*model.MoneyReceiptAllocation, error) {
	var alloc model.MoneyReceiptAllocation
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND money_receipt_id = ? AND id = ?", agencyID, receiptID, allocationID).
		First(&alloc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("核销明细不存在")
		}
		return nil, err
	}
	return &alloc, nil
}

func (r *ReceiptRepository) AllocationsByReceipt(ctx context.Context, agencyID, receiptID int64) ([]*model.MoneyReceiptAllocation, error) {
	var allocs []*model.MoneyReceiptAllocation
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND money_receipt_id = ?", agencyID, receiptID).
		Order("id ASC").
		Find(&allocs).Error
	return allocs, err
}

func (r *ReceiptRepository) DeleteAllocation(ctx context.Context, tx *gorm.DB, id int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.MoneyReceiptAllocation{}).Error
}

func (r *ReceiptRepository) DeleteAllocationsByReceipt(ctx context.Context, tx *gorm.DB, receiptID int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("money_receipt_id = ?", receiptID).
		Delete(&model.MoneyReceiptAllocation{}).Error
}

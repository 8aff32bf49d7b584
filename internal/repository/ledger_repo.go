package repository

import (
	"context"

	"travelbill/internal/model"

	"gorm.io/gorm"
)

// LedgerRepository 台账仓储。台账只追加；唯一的删除入口是按凭证号
// 整组删除（收付款单被删除/重做时），单行删除只用于撤销单条核销
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(ctx context.Context, tx *gorm.DB, entry *model.ClientTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *LedgerRepository) ListByVoucher(ctx context.Context, tx *gorm.DB, agencyID int64, voucherNo string) ([]*model.ClientTransaction, error) {
	if tx == nil {
		tx = r.db
	}
	var entries []*model.ClientTransaction
	err := tx.WithContext(ctx).
		Where("agency_id = ? AND voucher_no = ?", agencyID, voucherNo).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

// GetLeftover 取该凭证的余量桶行（每个凭证至多一行），不存在返回 (nil, nil)
func (r *LedgerRepository) GetLeftover(ctx context.Context, tx *gorm.DB, agencyID int64, voucherNo string) (*model.ClientTransaction, error) {
	if tx == nil {
		tx = r.db
	}
	var entry model.ClientTransaction
	err := tx.WithContext(ctx).
		Where("agency_id = ? AND voucher_no = ? AND invoice_type IN ? AND allocation_id = 0",
			agencyID, voucherNo,
			[]string{model.TransTypeOverall, model.TransTypeAdvance, model.TransTypeAdjust, model.TransTypeTickets}).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *LedgerRepository) UpdateAmount(ctx context.Context, tx *gorm.DB, id int64, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.ClientTransaction{}).
		Where("id = ?", id).
		UpdateColumn("amount", amount).Error
}

func (r *LedgerRepository) DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ClientTransaction{}).Error
}

// DeleteByAllocation 撤销单条核销时删除与之配对的台账行
func (r *LedgerRepository) DeleteByAllocation(ctx context.Context, tx *gorm.DB, allocationID int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("allocation_id = ?", allocationID).
		Delete(&model.ClientTransaction{}).Error
}

// DeleteByVoucher 凭证整组删除，收付款单删除/重做时调用
func (r *LedgerRepository) DeleteByVoucher(ctx context.Context, tx *gorm.DB, agencyID int64, voucherNo string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("agency_id = ? AND voucher_no = ?", agencyID, voucherNo).
		Delete(&model.ClientTransaction{}).Error
}

func (r *LedgerRepository) ListByClient(ctx context.Context, agencyID, clientID int64, page, pageSize int) ([]*model.ClientTransaction, int64, error) {
	var entries []*model.ClientTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ClientTransaction{}).
		Where("agency_id = ? AND client_id = ?", agencyID, clientID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error

	return entries, total, err
}

package repository

import (
	"context"

	"travelbill/internal/model"
	"travelbill/pkg/errs"

	"gorm.io/gorm"
)

type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *VendorRepository) GetByID(ctx context.Context, agencyID, id int64) (*model.Vendor, error) {
	var vendor model.Vendor
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&vendor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("供应商不存在")
		}
		return nil, err
	}
	return &vendor, nil
}

// AdjustBalance 供应商净余额按差额原子增减（正数向预付方向，负数向欠款方向）
func (r *VendorRepository) AdjustBalance(ctx context.Context, tx *gorm.DB, agencyID, id int64, delta int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Vendor{}).
		Where("agency_id = ? AND id = ?", agencyID, id).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("供应商不存在")
	}
	return nil
}

// ============================================================
// 供应商付款单
// ============================================================

type VendorPaymentRepository struct {
	db *gorm.DB
}

func NewVendorPaymentRepository(db *gorm.DB) *VendorPaymentRepository {
	return &VendorPaymentRepository{db: db}
}

func (r *VendorPaymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *model.VendorPayment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *VendorPaymentRepository) GetByID(ctx context.Context, agencyID, id int64) (*model.VendorPayment, error) {
	var payment model.VendorPayment
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("供应商付款单不存在")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *VendorPaymentRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.VendorPayment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *VendorPaymentRepository) Delete(ctx context.Context, tx *gorm.DB, agencyID, id int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		Delete(&model.VendorPayment{}).Error
}

func (r *VendorPaymentRepository) List(ctx context.Context, agencyID, vendorID int64, page, pageSize int) ([]*model.VendorPayment, int64, error) {
	var payments []*model.VendorPayment
	var total int64

	query := r.db.WithContext(ctx).Model(&model.VendorPayment{}).Where("agency_id = ?", agencyID)
	if vendorID > 0 {
		query = query.Where("vendor_id = ?", vendorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&payments).Error

	return payments, total, err
}

func (r *VendorPaymentRepository) CreateItems(ctx context.Context, tx *gorm.DB, items []*model.VendorPaymentItem) error {
	if len(items) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(items).Error
}

func (r *VendorPaymentRepository) ItemsByPayment(ctx context.Context, paymentID int64) ([]*model.VendorPaymentItem, error) {
	var items []*model.VendorPaymentItem
	err := r.db.WithContext(ctx).
		Where("vendor_payment_id = ?", paymentID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *VendorPaymentRepository) DeleteItemsByPayment(ctx context.Context, tx *gorm.DB, paymentID int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("vendor_payment_id = ?", paymentID).
		Delete(&model.VendorPaymentItem{}).Error
}

package repository

import (
	"context"

	"travelbill/internal/model"
	"travelbill/pkg/errs"

	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, tx *gorm.DB, invoice *model.Invoice) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, agencyID, id int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("发票不存在")
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, agencyID, id int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := forUpdate(tx.WithContext(ctx)).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("发票不存在")
		}
		return nil, err
	}
	return &invoice, nil
}

// GetByInvoiceNo 按业务主键查询，不存在时返回 (nil, nil)，供幂等 upsert 判断
func (r *InvoiceRepository) GetByInvoiceNo(ctx context.Context, agencyID int64, invoiceNo string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND invoice_no = ?", agencyID, invoiceNo).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// ListByClientNewestFirst 整体收款的核销顺序：最新创建的发票优先。
// 注意：这是业务方现行口径（一般应收系统是最旧发票优先），调整前需财务确认
func (r *InvoiceRepository) ListByClientNewestFirst(ctx context.Context, tx *gorm.DB, agencyID, clientID int64) ([]*model.Invoice, error) {
	if tx == nil {
		tx = r.db
	}
	var invoices []*model.Invoice
	err := forUpdate(tx.WithContext(ctx)).
		Where("agency_id = ? AND client_id = ?", agencyID, clientID).
		Order("created_at DESC, id DESC").
		Find(&invoices).Error
	return invoices, err
}

// UpdateReceived 写入核销后的绝对值与推导状态
func (r *InvoiceRepository) UpdateReceived(ctx context.Context, tx *gorm.DB, id int64, received int64, status string) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"received_amount": received,
			"status":          status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("发票不存在")
	}
	return nil
}

func (r *InvoiceRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *InvoiceRepository) Delete(ctx context.Context, tx *gorm.DB, agencyID, id int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		Delete(&model.Invoice{}).Error
}

type InvoiceFilter struct {
	ClientID int64
	Status   string
}

func (r *InvoiceRepository) List(ctx context.Context, agencyID int64, filter InvoiceFilter, page, pageSize int) ([]*model.Invoice, int64, error) {
	var invoices []*model.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("agency_id = ?", agencyID)
	if filter.ClientID > 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error

	return invoices, total, err
}

// FindInconsistent 对账任务用：状态与收款进度不匹配、或金额越界的发票
func (r *InvoiceRepository) FindInconsistent(ctx context.Context, limit int) ([]*model.Invoice, error) {
	var invoices []*model.Invoice
	err := r.db.WithContext(ctx).
		Where("received_amount < 0 OR received_amount > net_total"+
			" OR (received_amount >= net_total AND status <> ?)"+
			" OR (received_amount > 0 AND received_amount < net_total AND status <> ?)"+
			" OR (received_amount <= 0 AND status <> ?)",
			model.InvoiceStatusPaid, model.InvoiceStatusPartial, model.InvoiceStatusDue).
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

// ============================================================
// 成本行
// ============================================================

func (r *InvoiceRepository) CreateItems(ctx context.Context, tx *gorm.DB, items []*model.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(items).Error
}

// ReplaceItems 整体替换发票的成本行（重复提交/编辑时子集合全量重建）
func (r *InvoiceRepository) ReplaceItems(ctx context.Context, tx *gorm.DB, invoiceID int64, items []*model.InvoiceItem) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(items).Error
}

func (r *InvoiceRepository) DeleteItems(ctx context.Context, tx *gorm.DB, invoiceID int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&model.InvoiceItem{}).Error
}

// ItemsByInvoiceVendorForUpdate 某供应商在某发票下的成本行，按自然顺序锁定返回，
// 付款核销按这个顺序贪心分摊
func (r *InvoiceRepository) ItemsByInvoiceVendorForUpdate(ctx context.Context, tx *gorm.DB, invoiceID, vendorID int64) ([]*model.InvoiceItem, error) {
	if tx == nil {
		tx = r.db
	}
	var items []*model.InvoiceItem
	err := forUpdate(tx.WithContext(ctx)).
		Where("invoice_id = ? AND vendor_id = ?", invoiceID, vendorID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *InvoiceRepository) GetItem(ctx context.Context, tx *gorm.DB, id int64) (*model.InvoiceItem, error) {
	if tx == nil {
		tx = r.db
	}
	var item model.InvoiceItem
	err := tx.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("发票成本行不存在")
		}
		return nil, err
	}
	return &item, nil
}

// ApplyItemPaid 成本行已付金额按差额原子增减
func (r *InvoiceRepository) ApplyItemPaid(ctx context.Context, tx *gorm.DB, itemID int64, delta int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.InvoiceItem{}).
		Where("id = ?", itemID).
		UpdateColumn("paid_amount", gorm.Expr("paid_amount + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("发票成本行不存在")
	}
	return nil
}

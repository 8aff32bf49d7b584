package service

import (
	"context"
	"fmt"

	"travelbill/internal/config"
	"travelbill/internal/infrastructure/database"
	"travelbill/internal/model"
	"travelbill/internal/repository"
	"travelbill/pkg/errs"

	"gorm.io/gorm"
)

// InvoiceService 发票结算：开票扣减客户余额、信用额度拦截、
// 按发票号幂等 upsert、编辑按净额差额调账、删除全额回冲
type InvoiceService struct {
	db          *gorm.DB
	runner      *database.TxRunner
	cfg         *config.Config
	clientRepo  *repository.ClientRepository
	invoiceRepo *repository.InvoiceRepository
	outboxRepo  *repository.OutboxRepository
}

func NewInvoiceService(db *gorm.DB, runner *database.TxRunner, cfg *config.Config) *InvoiceService {
	return &InvoiceService{
		db:          db,
		runner:      runner,
		cfg:         cfg,
		clientRepo:  repository.NewClientRepository(db),
		invoiceRepo: repository.NewInvoiceRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
	}
}

type InvoiceItemInput struct {
	VendorID    int64  `json:"vendor_id" binding:"required"`
	Description string `json:"description"`
	TotalCost   int64  `json:"total_cost" binding:"required,gt=0"`
}

type CreateInvoiceRequest struct {
	InvoiceNo string             `json:"invoice_no" binding:"required"`
	ClientID  int64              `json:"client_id" binding:"required"`
	NetTotal  int64              `json:"net_total" binding:"required,gt=0"`
	Items     []InvoiceItemInput `json:"items"`
	Remark    string             `json:"remark"`
}

// CreateInvoice 开票。
//
// 【关键点】发票号是业务主键：同号重复提交不是冲突，而是按原单更新
// （重试的请求绝不能开出两张发票）。此时客户余额只按 newNet - oldNet
// 的差额调整，子成本行全量重建
func (s *InvoiceService) CreateInvoice(ctx context.Context, agencyID int64, req *CreateInvoiceRequest) (*model.Invoice, error) {
	if req.NetTotal <= 0 {
		return nil, errs.Validation("发票净额必须大于0")
	}
	for _, item := range req.Items {
		if item.TotalCost <= 0 {
			return nil, errs.Validation("成本行金额必须大于0")
		}
	}

	client, err := s.clientRepo.GetByID(ctx, agencyID, req.ClientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.invoiceRepo.GetByInvoiceNo(ctx, agencyID, req.InvoiceNo)
	if err != nil {
		return nil, fmt.Errorf("查询发票失败: %w", err)
	}

	if existing != nil {
		return s.upsertExisting(ctx, agencyID, client, existing, req)
	}

	// 信用额度拦截：limit > 0 才启用
	if client.CreditLimit > 0 && client.PresentBalance+req.NetTotal > client.CreditLimit {
		return nil, errs.BusinessRule("超出客户信用额度: 限额 %d", client.CreditLimit)
	}

	invoice := &model.Invoice{
		AgencyID:  agencyID,
		InvoiceNo: req.InvoiceNo,
		ClientID:  req.ClientID,
		NetTotal:  req.NetTotal,
		Status:    model.InvoiceStatusDue,
		Remark:    req.Remark,
	}

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		if err := s.invoiceRepo.Create(ctx, tx, invoice); err != nil {
			return fmt.Errorf("创建发票失败: %w", err)
		}
		if err := s.invoiceRepo.CreateItems(ctx, tx, buildItems(invoice.ID, req.Items)); err != nil {
			return fmt.Errorf("创建成本行失败: %w", err)
		}
		// 开票减少客户余额（余额为正 = 欠客户）
		if err := s.clientRepo.AdjustBalance(ctx, tx, agencyID, req.ClientID, -req.NetTotal); err != nil {
			return fmt.Errorf("调整客户余额失败: %w", err)
		}
		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, invoice.InvoiceNo, model.EventInvoiceCreated, map[string]interface{}{
			"agency_id":  agencyID,
			"invoice_no": invoice.InvoiceNo,
			"client_id":  req.ClientID,
			"net_total":  req.NetTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// upsertExisting 同号重复提交：按差额调账并全量替换成本行
func (s *InvoiceService) upsertExisting(ctx context.Context, agencyID int64, client *model.Client, existing *model.Invoice, req *CreateInvoiceRequest) (*model.Invoice, error) {
	if existing.ClientID != req.ClientID {
		return nil, errs.Validation("发票号 %s 已属于其他客户", req.InvoiceNo)
	}
	if req.NetTotal < existing.ReceivedAmount {
		return nil, errs.Validation("发票净额不能低于已收款金额 %d", existing.ReceivedAmount)
	}

	delta := req.NetTotal - existing.NetTotal

	// 增额同样要过信用额度，同号重报不能绕过限额
	if delta > 0 && client.CreditLimit > 0 && client.PresentBalance+delta > client.CreditLimit {
		return nil, errs.BusinessRule("超出客户信用额度: 限额 %d", client.CreditLimit)
	}

	err := s.runner.Run(ctx, func(tx *gorm.DB) error {
		if err := s.invoiceRepo.UpdateFields(ctx, tx, existing.ID, map[string]interface{}{
			"net_total": req.NetTotal,
			"status":    model.DeriveInvoiceStatus(existing.ReceivedAmount, req.NetTotal),
			"remark":    req.Remark,
		}); err != nil {
			return fmt.Errorf("更新发票失败: %w", err)
		}
		if err := s.invoiceRepo.ReplaceItems(ctx, tx, existing.ID, buildItems(existing.ID, req.Items)); err != nil {
			return fmt.Errorf("重建成本行失败: %w", err)
		}
		// 只按差额调整，绝不能把两次提交的净额都记到客户头上
		if delta != 0 {
			if err := s.clientRepo.AdjustBalance(ctx, tx, agencyID, existing.ClientID, -delta); err != nil {
				return fmt.Errorf("调整客户余额失败: %w", err)
			}
		}
		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, existing.InvoiceNo, model.EventInvoiceUpserted, map[string]interface{}{
			"agency_id":  agencyID,
			"invoice_no": existing.InvoiceNo,
			"client_id":  existing.ClientID,
			"net_total":  req.NetTotal,
			"net_delta":  delta,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.invoiceRepo.GetByID(ctx, agencyID, existing.ID)
}

type UpdateInvoiceRequest struct {
	NetTotal *int64              `json:"net_total"`
	Items    *[]InvoiceItemInput `json:"items"`
	Remark   *string             `json:"remark"`
}

// UpdateInvoiceByID 编辑发票：客户余额按 -(newNet - oldNet) 调整，
// 补丁里带了子集合就全量替换
func (s *InvoiceService) UpdateInvoiceByID(ctx context.Context, agencyID, id int64, req *UpdateInvoiceRequest) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}

	newNet := invoice.NetTotal
	if req.NetTotal != nil {
		newNet = *req.NetTotal
		if newNet <= 0 {
			return nil, errs.Validation("发票净额必须大于0")
		}
		if newNet < invoice.ReceivedAmount {
			return nil, errs.Validation("发票净额不能低于已收款金额 %d", invoice.ReceivedAmount)
		}
	}
	if req.Items != nil {
		for _, item := range *req.Items {
			if item.TotalCost <= 0 {
				return nil, errs.Validation("成本行金额必须大于0")
			}
		}
	}

	delta := newNet - invoice.NetTotal

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"net_total": newNet,
			"status":    model.DeriveInvoiceStatus(invoice.ReceivedAmount, newNet),
		}
		if req.Remark != nil {
			fields["remark"] = *req.Remark
		}
		if err := s.invoiceRepo.UpdateFields(ctx, tx, id, fields); err != nil {
			return fmt.Errorf("更新发票失败: %w", err)
		}
		if req.Items != nil {
			if err := s.invoiceRepo.ReplaceItems(ctx, tx, id, buildItems(id, *req.Items)); err != nil {
				return fmt.Errorf("重建成本行失败: %w", err)
			}
		}
		if delta != 0 {
			if err := s.clientRepo.AdjustBalance(ctx, tx, agencyID, invoice.ClientID, -delta); err != nil {
				return fmt.Errorf("调整客户余额失败: %w", err)
			}
		}
		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, invoice.InvoiceNo, model.EventInvoiceUpdated, map[string]interface{}{
			"agency_id":  agencyID,
			"invoice_no": invoice.InvoiceNo,
			"net_total":  newNet,
			"net_delta":  delta,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.invoiceRepo.GetByID(ctx, agencyID, id)
}

// DeleteInvoiceByID 删除发票：整个债务取消，客户余额全额回冲 +netTotal
func (s *InvoiceService) DeleteInvoiceByID(ctx context.Context, agencyID, id int64) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, agencyID, id)
	if err != nil {
		return err
	}

	return s.runner.Run(ctx, func(tx *gorm.DB) error {
		if err := s.invoiceRepo.DeleteItems(ctx, tx, id); err != nil {
			return fmt.Errorf("删除成本行失败: %w", err)
		}
		if err := s.invoiceRepo.Delete(ctx, tx, agencyID, id); err != nil {
			return fmt.Errorf("删除发票失败: %w", err)
		}
		if err := s.clientRepo.AdjustBalance(ctx, tx, agencyID, invoice.ClientID, invoice.NetTotal); err != nil {
			return fmt.Errorf("回冲客户余额失败: %w", err)
		}
		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, invoice.InvoiceNo, model.EventInvoiceDeleted, map[string]interface{}{
			"agency_id":  agencyID,
			"invoice_no": invoice.InvoiceNo,
			"client_id":  invoice.ClientID,
			"net_total":  invoice.NetTotal,
		})
	})
}

func (s *InvoiceService) ListInvoices(ctx context.Context, agencyID int64, filter repository.InvoiceFilter, page, pageSize int) ([]*model.Invoice, int64, error) {
	return s.invoiceRepo.List(ctx, agencyID, filter, page, pageSize)
}

func buildItems(invoiceID int64, inputs []InvoiceItemInput) []*model.InvoiceItem {
	items := make([]*model.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, &model.InvoiceItem{
			InvoiceID:   invoiceID,
			VendorID:    in.VendorID,
			Description: in.Description,
			TotalCost:   in.TotalCost,
		})
	}
	return items
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"travelbill/internal/config"
	"travelbill/internal/infrastructure/database"
	"travelbill/internal/infrastructure/lock"
	"travelbill/internal/model"
	"travelbill/internal/repository"
	"travelbill/pkg/errs"
	"travelbill/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ============================================================================
// 收款与核销引擎
// ============================================================================
//
// 一笔收款要同时改动：客户余额、零到多张发票的收款进度、资金账户余额、
// 核销明细、台账。全部落在同一个单位工作内；编辑/删除先把旧影响
// 完整地逆向回冲。
//
// 【不变量】任意时刻 allocated + remaining == amount - discount
//
// ============================================================================

type ReceiptService struct {
	db          *gorm.DB
	runner      *database.TxRunner
	redisClient *redis.Client
	cfg         *config.Config
	clientRepo  *repository.ClientRepository
	accountRepo *repository.AccountRepository
	invoiceRepo *repository.InvoiceRepository
	receiptRepo *repository.ReceiptRepository
	ledgerRepo  *repository.LedgerRepository
	counterRepo *repository.CounterRepository
	outboxRepo  *repository.OutboxRepository
}

func NewReceiptService(db *gorm.DB, runner *database.TxRunner, redisClient *redis.Client, cfg *config.Config) *ReceiptService {
	return &ReceiptService{
		db:          db,
		runner:      runner,
		redisClient: redisClient,
		cfg:         cfg,
		clientRepo:  repository.NewClientRepository(db),
		accountRepo: repository.NewAccountRepository(db),
		invoiceRepo: repository.NewInvoiceRepository(db),
		receiptRepo: repository.NewReceiptRepository(db),
		ledgerRepo:  repository.NewLedgerRepository(db),
		counterRepo: repository.NewCounterRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
	}
}

// lockClient 客户维度互斥；Redis 未配置时退化为仅依赖数据库事务
func (s *ReceiptService) lockClient(ctx context.Context, agencyID, clientID int64) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}
	clientLock := lock.NewClientLock(s.redisClient, agencyID, clientID, idgen.GenerateLockToken())
	if err := clientLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	return func() { clientLock.Unlock(ctx) }, nil
}

func (s *ReceiptService) padWidth() int {
	if s.cfg != nil && s.cfg.Business.VoucherPadWidth > 0 {
		return s.cfg.Business.VoucherPadWidth
	}
	return 4
}

type CreateReceiptRequest struct {
	ClientID  int64  `json:"client_id" binding:"required"`
	AccountID int64  `json:"account_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Discount  int64  `json:"discount"`
	PaymentTo string `json:"payment_to" binding:"required"`
	InvoiceID int64  `json:"invoice_id"` // 指定发票收款时传
	Remark    string `json:"remark"`
}

// pendingAllocation 核销计划里的一条：先算清楚，再统一落库
type pendingAllocation struct {
	invoiceID   int64
	amount      int64
	newReceived int64
	netTotal    int64
}

// CreateMoneyReceipt 记一笔收款。
//
// 【核销策略】
//   - 指定了发票：实收全额核销到这张发票，超出欠款直接拒绝
//   - OVERALL：拉该客户全部发票按最新创建优先贪心核销，核销不完的
//     余量单独记一行台账（余量桶），不硬塞进发票
//   - ADVANCE/ADJUST/TICKETS：不碰任何发票，全额进对应类型的余量桶
func (s *ReceiptService) CreateMoneyReceipt(ctx context.Context, agencyID int64, req *CreateReceiptRequest) (*model.MoneyReceipt, error) {
	paid := req.Amount - req.Discount
	if paid <= 0 {
		return nil, errs.Validation("实收金额必须大于0")
	}

	paymentTo := req.PaymentTo
	if req.InvoiceID > 0 {
		paymentTo = model.PaymentToInvoice
	}
	if !model.ValidPaymentTo(paymentTo) {
		return nil, errs.Validation("未知的收款归属口径: %s", req.PaymentTo)
	}
	if paymentTo == model.PaymentToInvoice && req.InvoiceID == 0 {
		return nil, errs.Validation("指定发票收款必须携带发票ID")
	}

	if _, err := s.clientRepo.GetByID(ctx, agencyID, req.ClientID); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.GetByID(ctx, agencyID, req.AccountID); err != nil {
		return nil, err
	}

	// 指定发票时的前置校验：归属客户一致，金额不超过发票欠款
	if req.InvoiceID > 0 {
		invoice, err := s.invoiceRepo.GetByID(ctx, agencyID, req.InvoiceID)
		if err != nil {
			return nil, err
		}
		if invoice.ClientID != req.ClientID {
			return nil, errs.Validation("发票不属于该客户")
		}
		if paid > invoice.Due() {
			return nil, errs.Validation("收款金额 %d 超过发票欠款 %d", paid, invoice.Due())
		}
	}

	unlock, err := s.lockClient(ctx, agencyID, req.ClientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	receipt := &model.MoneyReceipt{
		AgencyID:  agencyID,
		ClientID:  req.ClientID,
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Discount:  req.Discount,
		PaymentTo: paymentTo,
		InvoiceID: req.InvoiceID,
		Remark:    req.Remark,
	}

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		// 凭证号：发号失败整个操作中止
		voucherNo, err := s.counterRepo.Next(ctx, tx, agencyID, model.VoucherClassReceipt, s.padWidth())
		if err != nil {
			return err
		}
		receipt.VoucherNo = voucherNo

		// 收款增加客户余额
		if err := s.clientRepo.AdjustBalance(ctx, tx, agencyID, req.ClientID, paid); err != nil {
			return fmt.Errorf("调整客户余额失败: %w", err)
		}

		pending, err := s.planAllocations(ctx, tx, agencyID, req, paymentTo, paid)
		if err != nil {
			return err
		}

		var allocated int64
		for _, p := range pending {
			allocated += p.amount
		}
		receipt.AllocatedAmount = allocated
		receipt.RemainingAmount = paid - allocated

		if err := s.receiptRepo.Create(ctx, tx, receipt); err != nil {
			return fmt.Errorf("创建收款单失败: %w", err)
		}

		// 逐张发票落核销明细 + 台账行，审计能看到每张发票分到多少
		for _, p := range pending {
			if err := s.invoiceRepo.UpdateReceived(ctx, tx, p.invoiceID, p.newReceived,
				model.DeriveInvoiceStatus(p.newReceived, p.netTotal)); err != nil {
				return fmt.Errorf("更新发票收款进度失败: %w", err)
			}
			alloc := &model.MoneyReceiptAllocation{
				AgencyID:       agencyID,
				MoneyReceiptID: receipt.ID,
				InvoiceID:      p.invoiceID,
				AppliedAmount:  p.amount,
			}
			if err := s.receiptRepo.CreateAllocation(ctx, tx, alloc); err != nil {
				return fmt.Errorf("创建核销明细失败: %w", err)
			}
			if err := s.ledgerRepo.Create(ctx, tx, &model.ClientTransaction{
				TransactionNo: idgen.GenerateTransactionNo(),
				AgencyID:      agencyID,
				VoucherNo:     voucherNo,
				ClientID:      req.ClientID,
				InvoiceID:     p.invoiceID,
				AllocationID:  alloc.ID,
				InvoiceType:   model.TransTypeInvoice,
				Direction:     model.DirectionReceive,
				Amount:        p.amount,
				Remark:        req.Remark,
			}); err != nil {
				return fmt.Errorf("记录台账失败: %w", err)
			}
		}

		// 余量桶
		if receipt.RemainingAmount > 0 {
			if err := s.ledgerRepo.Create(ctx, tx, &model.ClientTransaction{
				TransactionNo: idgen.GenerateTransactionNo(),
				AgencyID:      agencyID,
				VoucherNo:     voucherNo,
				ClientID:      req.ClientID,
				InvoiceType:   model.LeftoverTransType(paymentTo),
				Direction:     model.DirectionReceive,
				Amount:        receipt.RemainingAmount,
				Remark:        req.Remark,
			}); err != nil {
				return fmt.Errorf("记录余量台账失败: %w", err)
			}
		}

		// 资金账户入账
		if err := s.accountRepo.ApplyDelta(ctx, tx, agencyID, req.AccountID, paid); err != nil {
			return fmt.Errorf("调整账户余额失败: %w", err)
		}

		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, voucherNo, model.EventReceiptCreated, map[string]interface{}{
			"agency_id":  agencyID,
			"voucher_no": voucherNo,
			"client_id":  req.ClientID,
			"amount":     req.Amount,
			"discount":   req.Discount,
			"allocated":  receipt.AllocatedAmount,
			"remaining":  receipt.RemainingAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("收款成功: voucherNo=%s, clientID=%d, paid=%d, allocated=%d",
		receipt.VoucherNo, req.ClientID, paid, receipt.AllocatedAmount)
	return receipt, nil
}

// planAllocations 计算核销计划（指定发票全额 / OVERALL 贪心 / 其余不核销）
func (s *ReceiptService) planAllocations(ctx context.Context, tx *gorm.DB, agencyID int64,
	req *CreateReceiptRequest, paymentTo string, paid int64) ([]pendingAllocation, error) {

	switch {
	case req.InvoiceID > 0:
		invoice, err := s.invoiceRepo.GetByIDForUpdate(ctx, tx, agencyID, req.InvoiceID)
		if err != nil {
			return nil, err
		}
		// 锁内复核，防止前置校验之后欠款被并发收款吃掉
		if paid > invoice.Due() {
			return nil, errs.Validation("收款金额 %d 超过发票欠款 %d", paid, invoice.Due())
		}
		return []pendingAllocation{{
			invoiceID:   invoice.ID,
			amount:      paid,
			newReceived: invoice.ReceivedAmount + paid,
			netTotal:    invoice.NetTotal,
		}}, nil

	case paymentTo == model.PaymentToOverall:
		// 最新创建的发票优先（业务方现行口径，见 InvoiceRepository）
		invoices, err := s.invoiceRepo.ListByClientNewestFirst(ctx, tx, agencyID, req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("查询客户发票失败: %w", err)
		}
		var pending []pendingAllocation
		remaining := paid
		for _, invoice := range invoices {
			if remaining <= 0 {
				break
			}
			due := invoice.Due()
			if due <= 0 {
				continue
			}
			apply := minInt64(due, remaining)
			pending = append(pending, pendingAllocation{
				invoiceID:   invoice.ID,
				amount:      apply,
				newReceived: invoice.ReceivedAmount + apply,
				netTotal:    invoice.NetTotal,
			})
			remaining -= apply
		}
		return pending, nil

	default:
		// ADVANCE / ADJUST / TICKETS：不核销任何发票
		return nil, nil
	}
}

type UpdateReceiptRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Discount  int64  `json:"discount"`
	AccountID int64  `json:"account_id" binding:"required"`
	Remark    string `json:"remark"`
}

// UpdateMoneyReceipt 编辑收款单：客户余额按实收差额调整；
// 换账户时旧账户全额回冲、新账户全额入账；余量桶随新余量同步
func (s *ReceiptService) UpdateMoneyReceipt(ctx context.Context, agencyID, id int64, req *UpdateReceiptRequest) (*model.MoneyReceipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}

	newPaid := req.Amount - req.Discount
	if newPaid <= 0 {
		return nil, errs.Validation("实收金额必须大于0")
	}
	// 已核销到发票的部分是既成事实，收款单不能改小到它以下
	if newPaid < receipt.AllocatedAmount {
		return nil, errs.BusinessRule("实收金额不能低于已核销金额 %d", receipt.AllocatedAmount)
	}
	if _, err := s.accountRepo.GetByID(ctx, agencyID, req.AccountID); err != nil {
		return nil, err
	}

	oldPaid := receipt.PaidAmount()
	deltaPaid := newPaid - oldPaid
	newRemaining := newPaid - receipt.AllocatedAmount

	unlock, err := s.lockClient(ctx, agencyID, receipt.ClientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		if deltaPaid != 0 {
			if err := s.clientRepo.AdjustBalance(ctx, tx, agencyID, receipt.ClientID, deltaPaid); err != nil {
				return fmt.Errorf("调整客户余额失败: %w", err)
			}
		}

		if req.AccountID == receipt.AccountID {
			if deltaPaid != 0 {
				if err := s.accountRepo.ApplyDelta(ctx, tx, agencyID, receipt.AccountID, deltaPaid); err != nil {
					return fmt.Errorf("调整账户余额失败: %w", err)
				}
			}
		} else {
			// 换账户：旧账户全额回冲，新账户全额入账
			if err := s.accountRepo.ApplyDelta(ctx, tx, agencyID, receipt.AccountID, -oldPaid); err != nil {
				return fmt.Errorf("回冲原账户失败: %w", err)
			}
			if err := s.accountRepo.ApplyDelta(ctx, tx, agencyID, req.AccountID, newPaid); err != nil {
				return fmt.Errorf("新账户入账失败: %w", err)
			}
		}

		if err := s.syncLeftover(ctx, tx, receipt, newRemaining); err != nil {
			return err
		}

		if err := s.receiptRepo.UpdateFields(ctx, tx, id, map[string]interface{}{
			"amount":           req.Amount,
			"discount":         req.Discount,
			"account_id":       req.AccountID,
			"remaining_amount": newRemaining,
			"remark":           req.Remark,
		}); err != nil {
			return fmt.Errorf("更新收款单失败: %w", err)
		}

		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, receipt.VoucherNo, model.EventReceiptUpdated, map[string]interface{}{
			"agency_id":  agencyID,
			"voucher_no": receipt.VoucherNo,
			"paid_delta": deltaPaid,
			"remaining":  newRemaining,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.receiptRepo.GetByID(ctx, agencyID, id)
}

// DeleteMoneyReceipt 删除收款单：创建的精确逆操作。
// 发票回冲用核销明细里记录的 applied_amount，不做重算
func (s *ReceiptService) DeleteMoneyReceipt(ctx context.Context, agencyID, id int64) error {
	receipt, err := s.receiptRepo.GetByID(ctx, agencyID, id)
	if err != nil {
		return err
	}
	allocations, err := s.receiptRepo.AllocationsByReceipt(ctx, agencyID, id)
	if err != nil {
		return fmt.Errorf("查询核销明细失败: %w", err)
	}

	paid := receipt.PaidAmount()

	unlock, err := s.lockClient(ctx, agencyID, receipt.ClientID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.runner.Run(ctx, func(tx *gorm.DB) error {
		if err := s.clientRepo.AdjustBalance(ctx, tx, agencyID, receipt.ClientID, -paid); err != nil {
			return fmt.Errorf("回冲客户余额失败: %w", err)
		}
		if err := s.accountRepo.ApplyDelta(ctx, tx, agencyID, receipt.AccountID, -paid); err != nil {
			return fmt.Errorf("回冲账户余额失败: %w", err)
		}
		for _, alloc := range allocations {
			if err := s.revertInvoiceReceived(ctx, tx, agencyID, alloc.InvoiceID, alloc.AppliedAmount); err != nil {
				return err
			}
		}
		if err := s.receiptRepo.DeleteAllocationsByReceipt(ctx, tx, id); err != nil {
			return fmt.Errorf("删除核销明细失败: %w", err)
		}
		if err := s.ledgerRepo.DeleteByVoucher(ctx, tx, agencyID, receipt.VoucherNo); err != nil {
			return fmt.Errorf("删除台账失败: %w", err)
		}
		if err := s.receiptRepo.Delete(ctx, tx, agencyID, id); err != nil {
			return fmt.Errorf("删除收款单失败: %w", err)
		}
		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, receipt.VoucherNo, model.EventReceiptDeleted, map[string]interface{}{
			"agency_id":  agencyID,
			"voucher_no": receipt.VoucherNo,
			"client_id":  receipt.ClientID,
			"paid":       paid,
		})
	})
}

type AllocationEntry struct {
	InvoiceID int64 `json:"invoice_id" binding:"required"`
	Amount    int64 `json:"amount" binding:"required,gt=0"`
}

// CreateReceiptAllocations 把收款单的未核销余量事后分摊到指定发票。
// 客户/账户余额不动（钱早已入账），只动发票进度、核销明细和台账
func (s *ReceiptService) CreateReceiptAllocations(ctx context.Context, agencyID, receiptID int64, entries []AllocationEntry) (*model.MoneyReceipt, error) {
	if len(entries) == 0 {
		return nil, errs.Validation("核销明细不能为空")
	}

	receipt, err := s.receiptRepo.GetByID(ctx, agencyID, receiptID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, entry := range entries {
		if entry.Amount <= 0 {
			return nil, errs.Validation("核销金额必须大于0")
		}
		total += entry.Amount
	}
	if total > receipt.RemainingAmount {
		return nil, errs.BusinessRule("核销金额 %d 超过收款单剩余可核销金额 %d", total, receipt.RemainingAmount)
	}

	unlock, err := s.lockClient(ctx, agencyID, receipt.ClientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		for _, entry := range entries {
			invoice, err := s.invoiceRepo.GetByIDForUpdate(ctx, tx, agencyID, entry.InvoiceID)
			if err != nil {
				return err
			}
			if invoice.ClientID != receipt.ClientID {
				return errs.Validation("发票不属于该收款单的客户")
			}
			if entry.Amount > invoice.Due() {
				return errs.Validation("核销金额 %d 超过发票欠款 %d", entry.Amount, invoice.Due())
			}

			newReceived := invoice.ReceivedAmount + entry.Amount
			if err := s.invoiceRepo.UpdateReceived(ctx, tx, invoice.ID, newReceived,
				model.DeriveInvoiceStatus(newReceived, invoice.NetTotal)); err != nil {
				return fmt.Errorf("更新发票收款进度失败: %w", err)
			}
			alloc := &model.MoneyReceiptAllocation{
				AgencyID:       agencyID,
				MoneyReceiptID: receiptID,
				InvoiceID:      invoice.ID,
				AppliedAmount:  entry.Amount,
			}
			if err := s.receiptRepo.CreateAllocation(ctx, tx, alloc); err != nil {
				return fmt.Errorf("创建核销明细失败: %w", err)
			}
			if err := s.ledgerRepo.Create(ctx, tx, &model.ClientTransaction{
				TransactionNo: idgen.GenerateTransactionNo(),
				AgencyID:      agencyID,
				VoucherNo:     receipt.VoucherNo,
				ClientID:      receipt.ClientID,
				InvoiceID:     invoice.ID,
				AllocationID:  alloc.ID,
				InvoiceType:   model.TransTypeInvoice,
				Direction:     model.DirectionReceive,
				Amount:        entry.Amount,
			}); err != nil {
				return fmt.Errorf("记录台账失败: %w", err)
			}
		}

		newAllocated := receipt.AllocatedAmount + total
		newRemaining := receipt.RemainingAmount - total
		if err := s.receiptRepo.UpdateFields(ctx, tx, receiptID, map[string]interface{}{
			"allocated_amount": newAllocated,
			"remaining_amount": newRemaining,
		}); err != nil {
			return fmt.Errorf("更新收款单失败: %w", err)
		}
		if err := s.syncLeftover(ctx, tx, receipt, newRemaining); err != nil {
			return err
		}

		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, receipt.VoucherNo, model.EventAllocationCreated, map[string]interface{}{
			"agency_id":  agencyID,
			"voucher_no": receipt.VoucherNo,
			"allocated":  newAllocated,
			"remaining":  newRemaining,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.receiptRepo.GetByID(ctx, agencyID, receiptID)
}

// DeleteReceiptAllocation 撤销单条核销：发票欠款涨回去，
// 收款单余量涨回来，配对的台账行删除，余量桶同步
func (s *ReceiptService) DeleteReceiptAllocation(ctx context.Context, agencyID, receiptID, allocationID int64) (*model.MoneyReceipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, agencyID, receiptID)
	if err != nil {
		return nil, err
	}
	alloc, err := s.receiptRepo.GetAllocation(ctx, agencyID, receiptID, allocationID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockClient(ctx, agencyID, receipt.ClientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		if err := s.revertInvoiceReceived(ctx, tx, agencyID, alloc.InvoiceID, alloc.AppliedAmount); err != nil {
			return err
		}
		if err := s.receiptRepo.DeleteAllocation(ctx, tx, allocationID); err != nil {
			return fmt.Errorf("删除核销明细失败: %w", err)
		}
		if err := s.ledgerRepo.DeleteByAllocation(ctx, tx, allocationID); err != nil {
			return fmt.Errorf("删除台账失败: %w", err)
		}

		newAllocated := receipt.AllocatedAmount - alloc.AppliedAmount
		newRemaining := receipt.RemainingAmount + alloc.AppliedAmount
		if err := s.receiptRepo.UpdateFields(ctx, tx, receiptID, map[string]interface{}{
			"allocated_amount": newAllocated,
			"remaining_amount": newRemaining,
		}); err != nil {
			return fmt.Errorf("更新收款单失败: %w", err)
		}
		if err := s.syncLeftover(ctx, tx, receipt, newRemaining); err != nil {
			return err
		}

		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, receipt.VoucherNo, model.EventAllocationDeleted, map[string]interface{}{
			"agency_id":  agencyID,
			"voucher_no": receipt.VoucherNo,
			"invoice_id": alloc.InvoiceID,
			"amount":     alloc.AppliedAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.receiptRepo.GetByID(ctx, agencyID, receiptID)
}

func (s *ReceiptService) ListMoneyReceipts(ctx context.Context, agencyID, clientID int64, page, pageSize int) ([]*model.MoneyReceipt, int64, error) {
	return s.receiptRepo.List(ctx, agencyID, clientID, page, pageSize)
}

func (s *ReceiptService) ListReceiptAllocations(ctx context.Context, agencyID, receiptID int64) ([]*model.MoneyReceiptAllocation, error) {
	if _, err := s.receiptRepo.GetByID(ctx, agencyID, receiptID); err != nil {
		return nil, err
	}
	return s.receiptRepo.AllocationsByReceipt(ctx, agencyID, receiptID)
}

// revertInvoiceReceived 按记录的核销金额回冲发票，回冲出负数说明数据已损坏
func (s *ReceiptService) revertInvoiceReceived(ctx context.Context, tx *gorm.DB, agencyID, invoiceID, applied int64) error {
	invoice, err := s.invoiceRepo.GetByIDForUpdate(ctx, tx, agencyID, invoiceID)
	if err != nil {
		return err
	}
	newReceived := invoice.ReceivedAmount - applied
	if newReceived < 0 {
		return errs.Infrastructure(nil, "发票 %s 回冲后收款为负，台账可能已不一致", invoice.InvoiceNo)
	}
	if err := s.invoiceRepo.UpdateReceived(ctx, tx, invoiceID, newReceived,
		model.DeriveInvoiceStatus(newReceived, invoice.NetTotal)); err != nil {
		return fmt.Errorf("回冲发票收款进度失败: %w", err)
	}
	return nil
}

// syncLeftover 让余量桶台账行与收款单当前余量保持一致：
// 余量 > 0 时有且仅有一行且金额相等，余量归零时删除
func (s *ReceiptService) syncLeftover(ctx context.Context, tx *gorm.DB, receipt *model.MoneyReceipt, remaining int64) error {
	row, err := s.ledgerRepo.GetLeftover(ctx, tx, receipt.AgencyID, receipt.VoucherNo)
	if err != nil {
		return fmt.Errorf("查询余量台账失败: %w", err)
	}

	switch {
	case remaining > 0 && row == nil:
		return s.ledgerRepo.Create(ctx, tx, &model.ClientTransaction{
			TransactionNo: idgen.GenerateTransactionNo(),
			AgencyID:      receipt.AgencyID,
			VoucherNo:     receipt.VoucherNo,
			ClientID:      receipt.ClientID,
			InvoiceType:   model.LeftoverTransType(receipt.PaymentTo),
			Direction:     model.DirectionReceive,
			Amount:        remaining,
		})
	case remaining > 0:
		return s.ledgerRepo.UpdateAmount(ctx, tx, row.ID, remaining)
	case row != nil:
		return s.ledgerRepo.DeleteByID(ctx, tx, row.ID)
	}
	return nil
}

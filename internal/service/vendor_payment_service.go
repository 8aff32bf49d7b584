package service

import (
	"context"
	"fmt"
	"log"
	"sort"
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
// 供应商付款
// ============================================================================
//
// 收款引擎的镜像：方向从收变付，核销对象从发票欠款变成发票成本行的
// 未付部分。编辑不做差额补丁，整单逆向后按新参数重放，凭证号不变。
//
// ============================================================================

type VendorPaymentService struct {
	db          *gorm.DB
	runner      *database.TxRunner
	redisClient *redis.Client
	cfg         *config.Config
	accountRepo *repository.AccountRepository
	invoiceRepo *repository.InvoiceRepository
	vendorRepo  *repository.VendorRepository
	paymentRepo *repository.VendorPaymentRepository
	ledgerRepo  *repository.LedgerRepository
	counterRepo *repository.CounterRepository
	outboxRepo  *repository.OutboxRepository
}

func NewVendorPaymentService(db *gorm.DB, runner *database.TxRunner, redisClient *redis.Client, cfg *config.Config) *VendorPaymentService {
	return &VendorPaymentService{
		db:          db,
		runner:      runner,
		redisClient: redisClient,
		cfg:         cfg,
		accountRepo: repository.NewAccountRepository(db),
		invoiceRepo: repository.NewInvoiceRepository(db),
		vendorRepo:  repository.NewVendorRepository(db),
		paymentRepo: repository.NewVendorPaymentRepository(db),
		ledgerRepo:  repository.NewLedgerRepository(db),
		counterRepo: repository.NewCounterRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
	}
}

// lockAccounts 按账户ID升序依次加锁（固定顺序避免互换账户的编辑互相死锁）。
// 换账户的编辑要同时锁住新旧两个账户
func (s *VendorPaymentService) lockAccounts(ctx context.Context, agencyID int64, accountIDs ...int64) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}

	uniq := make([]int64, 0, len(accountIDs))
	seen := make(map[int64]bool, len(accountIDs))
	for _, id := range accountIDs {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	var unlocks []func()
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, id := range uniq {
		accountLock := lock.NewAccountLock(s.redisClient, agencyID, id, idgen.GenerateLockToken())
		if err := accountLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			release()
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		held := accountLock
		unlocks = append(unlocks, func() { held.Unlock(ctx) })
	}
	return release, nil
}

func (s *VendorPaymentService) padWidth() int {
	if s.cfg != nil && s.cfg.Business.VoucherPadWidth > 0 {
		return s.cfg.Business.VoucherPadWidth
	}
	return 4
}

// VendorPaymentEntry 付款在供应商维度的拆分
type VendorPaymentEntry struct {
	VendorID int64 `json:"vendor_id" binding:"required"`
	Amount   int64 `json:"amount" binding:"required,gt=0"`
}

type CreateVendorPaymentRequest struct {
	AccountID int64                `json:"account_id" binding:"required"`
	Amount    int64                `json:"amount" binding:"required,gt=0"`
	VendorAit int64                `json:"vendor_ait"`
	InvoiceID int64                `json:"invoice_id"` // 针对某张发票的成本付款时传
	VendorID  int64                `json:"vendor_id"`  // 单一供应商直付时传
	Entries   []VendorPaymentEntry `json:"entries"`
	Remark    string               `json:"remark"`
}

// normalizeEntries 单一供应商写法归一成拆分列表，金额之和必须等于付款本金
func (s *VendorPaymentService) normalizeEntries(req *CreateVendorPaymentRequest) ([]VendorPaymentEntry, error) {
	entries := req.Entries
	if len(entries) == 0 {
		if req.VendorID == 0 {
			return nil, errs.Validation("必须指定供应商或供应商拆分明细")
		}
		entries = []VendorPaymentEntry{{VendorID: req.VendorID, Amount: req.Amount}}
	}
	var sum int64
	for _, entry := range entries {
		if entry.Amount <= 0 {
			return nil, errs.Validation("供应商拆分金额必须大于0")
		}
		sum += entry.Amount
	}
	if sum != req.Amount {
		return nil, errs.Validation("供应商拆分金额之和 %d 与付款金额 %d 不一致", sum, req.Amount)
	}
	return entries, nil
}

// CreateVendorPayment 记一笔对供应商的付款。
//
// 每个供应商维度：净余额 += 金额（正数=预付加深，负数欠款被冲抵）；
// 指定了发票时，按成本行自然顺序贪心冲抵该供应商在这张发票下的未付
// 成本，冲不完的部分体现为预付。资金账户按含税总额出账。
func (s *VendorPaymentService) CreateVendorPayment(ctx context.Context, agencyID int64, req *CreateVendorPaymentRequest) (*model.VendorPayment, error) {
	if req.VendorAit < 0 {
		return nil, errs.Validation("代扣税不能为负数")
	}
	entries, err := s.normalizeEntries(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.GetByID(ctx, agencyID, req.AccountID); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if _, err := s.vendorRepo.GetByID(ctx, agencyID, entry.VendorID); err != nil {
			return nil, err
		}
	}
	if req.InvoiceID > 0 {
		if _, err := s.invoiceRepo.GetByID(ctx, agencyID, req.InvoiceID); err != nil {
			return nil, err
		}
	}

	unlock, err := s.lockAccounts(ctx, agencyID, req.AccountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	payment := &model.VendorPayment{
		AgencyID:    agencyID,
		AccountID:   req.AccountID,
		InvoiceID:   req.InvoiceID,
		VendorID:    req.VendorID,
		Amount:      req.Amount,
		VendorAit:   req.VendorAit,
		TotalAmount: req.Amount + req.VendorAit,
		Remark:      req.Remark,
	}

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		voucherNo, err := s.counterRepo.Next(ctx, tx, agencyID, model.VoucherClassVendorPayment, s.padWidth())
		if err != nil {
			return err
		}
		payment.VoucherNo = voucherNo

		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("创建付款单失败: %w", err)
		}
		if err := s.applyEffects(ctx, tx, agencyID, payment, entries); err != nil {
			return err
		}

		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, voucherNo, model.EventVendorPaymentCreated, map[string]interface{}{
			"agency_id":    agencyID,
			"voucher_no":   voucherNo,
			"amount":       req.Amount,
			"vendor_ait":   req.VendorAit,
			"total_amount": payment.TotalAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("供应商付款成功: voucherNo=%s, accountID=%d, total=%d",
		payment.VoucherNo, req.AccountID, payment.TotalAmount)
	return payment, nil
}

// applyEffects 把一笔付款的全部副作用施加到账本上（创建与重放共用）
func (s *VendorPaymentService) applyEffects(ctx context.Context, tx *gorm.DB, agencyID int64,
	payment *model.VendorPayment, entries []VendorPaymentEntry) error {

	for _, entry := range entries {
		if err := s.vendorRepo.AdjustBalance(ctx, tx, agencyID, entry.VendorID, entry.Amount); err != nil {
			return fmt.Errorf("调整供应商余额失败: %w", err)
		}

		// 指定发票时按成本行贪心冲抵该供应商的未付成本
		if payment.InvoiceID > 0 {
			items, err := s.invoiceRepo.ItemsByInvoiceVendorForUpdate(ctx, tx, payment.InvoiceID, entry.VendorID)
			if err != nil {
				return fmt.Errorf("查询发票成本行失败: %w", err)
			}
			remaining := entry.Amount
			for _, item := range items {
				if remaining <= 0 {
					break
				}
				due := item.Due()
				if due <= 0 {
					continue
				}
				apply := minInt64(due, remaining)
				if err := s.invoiceRepo.ApplyItemPaid(ctx, tx, item.ID, apply); err != nil {
					return fmt.Errorf("更新成本行已付金额失败: %w", err)
				}
				if err := s.paymentRepo.CreateItems(ctx, tx, []*model.VendorPaymentItem{{
					AgencyID:        agencyID,
					VendorPaymentID: payment.ID,
					VendorID:        entry.VendorID,
					InvoiceID:       payment.InvoiceID,
					InvoiceItemID:   item.ID,
					Amount:          apply,
				}}); err != nil {
					return fmt.Errorf("创建付款核销明细失败: %w", err)
				}
				remaining -= apply
			}
		}

		// 每个供应商一行付款台账，金额即该供应商分到的本金
		if err := s.ledgerRepo.Create(ctx, tx, &model.ClientTransaction{
			TransactionNo: idgen.GenerateTransactionNo(),
			AgencyID:      agencyID,
			VoucherNo:     payment.VoucherNo,
			VendorID:      entry.VendorID,
			InvoiceID:     payment.InvoiceID,
			InvoiceType:   model.TransTypeVendorPayment,
			Direction:     model.DirectionPayout,
			Amount:        entry.Amount,
			Remark:        payment.Remark,
		}); err != nil {
			return fmt.Errorf("记录付款台账失败: %w", err)
		}
	}

	if err := s.accountRepo.ApplyDelta(ctx, tx, agencyID, payment.AccountID, -payment.TotalAmount); err != nil {
		return fmt.Errorf("账户出账失败: %w", err)
	}
	return nil
}

// reverseEffects 完整逆向一笔付款：成本行按核销明细回冲，供应商余额
// 按台账行回冲，账户按含税总额回账，核销明细与台账行删除
func (s *VendorPaymentService) reverseEffects(ctx context.Context, tx *gorm.DB, agencyID int64, payment *model.VendorPayment) error {
	items, err := s.paymentRepo.ItemsByPayment(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("查询付款核销明细失败: %w", err)
	}
	for _, item := range items {
		if err := s.invoiceRepo.ApplyItemPaid(ctx, tx, item.InvoiceItemID, -item.Amount); err != nil {
			return fmt.Errorf("回冲成本行已付金额失败: %w", err)
		}
	}
	if err := s.paymentRepo.DeleteItemsByPayment(ctx, tx, payment.ID); err != nil {
		return fmt.Errorf("删除付款核销明细失败: %w", err)
	}

	rows, err := s.ledgerRepo.ListByVoucher(ctx, tx, agencyID, payment.VoucherNo)
	if err != nil {
		return fmt.Errorf("查询付款台账失败: %w", err)
	}
	for _, row := range rows {
		if row.InvoiceType != model.TransTypeVendorPayment {
			continue
		}
		if err := s.vendorRepo.AdjustBalance(ctx, tx, agencyID, row.VendorID, -row.Amount); err != nil {
			return fmt.Errorf("回冲供应商余额失败: %w", err)
		}
	}
	if err := s.ledgerRepo.DeleteByVoucher(ctx, tx, agencyID, payment.VoucherNo); err != nil {
		return fmt.Errorf("删除付款台账失败: %w", err)
	}

	if err := s.accountRepo.ApplyDelta(ctx, tx, agencyID, payment.AccountID, payment.TotalAmount); err != nil {
		return fmt.Errorf("账户回账失败: %w", err)
	}
	return nil
}

// UpdateVendorPayment 编辑付款单：旧影响整单逆向，新参数在同一事务内
// 重放，沿用原凭证号
func (s *VendorPaymentService) UpdateVendorPayment(ctx context.Context, agencyID, id int64, req *CreateVendorPaymentRequest) (*model.VendorPayment, error) {
	if req.VendorAit < 0 {
		return nil, errs.Validation("代扣税不能为负数")
	}
	entries, err := s.normalizeEntries(req)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.GetByID(ctx, agencyID, req.AccountID); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if _, err := s.vendorRepo.GetByID(ctx, agencyID, entry.VendorID); err != nil {
			return nil, err
		}
	}
	if req.InvoiceID > 0 {
		if _, err := s.invoiceRepo.GetByID(ctx, agencyID, req.InvoiceID); err != nil {
			return nil, err
		}
	}

	unlock, err := s.lockAccounts(ctx, agencyID, payment.AccountID, req.AccountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.runner.Run(ctx, func(tx *gorm.DB) error {
		if err := s.reverseEffects(ctx, tx, agencyID, payment); err != nil {
			return err
		}

		updated := &model.VendorPayment{
			ID:          payment.ID,
			AgencyID:    agencyID,
			VoucherNo:   payment.VoucherNo,
			AccountID:   req.AccountID,
			InvoiceID:   req.InvoiceID,
			VendorID:    req.VendorID,
			Amount:      req.Amount,
			VendorAit:   req.VendorAit,
			TotalAmount: req.Amount + req.VendorAit,
			Remark:      req.Remark,
		}
		if err := s.paymentRepo.UpdateFields(ctx, tx, id, map[string]interface{}{
			"account_id":   updated.AccountID,
			"invoice_id":   updated.InvoiceID,
			"vendor_id":    updated.VendorID,
			"amount":       updated.Amount,
			"vendor_ait":   updated.VendorAit,
			"total_amount": updated.TotalAmount,
			"remark":       updated.Remark,
		}); err != nil {
			return fmt.Errorf("更新付款单失败: %w", err)
		}
		if err := s.applyEffects(ctx, tx, agencyID, updated, entries); err != nil {
			return err
		}

		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, payment.VoucherNo, model.EventVendorPaymentUpdated, map[string]interface{}{
			"agency_id":    agencyID,
			"voucher_no":   payment.VoucherNo,
			"total_amount": updated.TotalAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.paymentRepo.GetByID(ctx, agencyID, id)
}

// DeleteVendorPayment 删除付款单：整单逆向后删除单据本身
func (s *VendorPaymentService) DeleteVendorPayment(ctx context.Context, agencyID, id int64) error {
	payment, err := s.paymentRepo.GetByID(ctx, agencyID, id)
	if err != nil {
		return err
	}

	unlock, err := s.lockAccounts(ctx, agencyID, payment.AccountID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.runner.Run(ctx, func(tx *gorm.DB) error {
		if err := s.reverseEffects(ctx, tx, agencyID, payment); err != nil {
			return err
		}
		if err := s.paymentRepo.Delete(ctx, tx, agencyID, id); err != nil {
			return fmt.Errorf("删除付款单失败: %w", err)
		}
		return writeLedgerEvent(ctx, tx, s.outboxRepo, s.cfg, payment.VoucherNo, model.EventVendorPaymentDeleted, map[string]interface{}{
			"agency_id":    agencyID,
			"voucher_no":   payment.VoucherNo,
			"total_amount": payment.TotalAmount,
		})
	})
}

func (s *VendorPaymentService) ListVendorPayments(ctx context.Context, agencyID, vendorID int64, page, pageSize int) ([]*model.VendorPayment, int64, error) {
	return s.paymentRepo.List(ctx, agencyID, vendorID, page, pageSize)
}

// GetVendorBalance 供应商余额的对外形态（{type, amount}）
func (s *VendorPaymentService) GetVendorBalance(ctx context.Context, agencyID, vendorID int64) (*model.VendorBalanceState, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, agencyID, vendorID)
	if err != nil {
		return nil, err
	}
	state := vendor.BalanceState()
	return &state, nil
}

package job

import (
	"context"
	"log"
	"time"

	"travelbill/internal/config"
	"travelbill/internal/model"
	"travelbill/internal/repository"

	"gorm.io/gorm"
)

// ============================================================================
// 余额对账任务
// ============================================================================
//
// 两类不变量被周期性核查：
//   - 收款单：allocated_amount + remaining_amount == amount - discount
//   - 发票：0 <= received_amount <= net_total，状态与金额推导一致
//
// 事务开启时这些不变量由单位工作保证，这里只是兜底；
// transactions_enabled=false 的降级模式下中途失败会留下半套状态，
// 该任务是运营侧发现它们的唯一手段，只报告不自动修
//
// ============================================================================

type BalanceReconcileJob struct {
	db          *gorm.DB
	receiptRepo *repository.ReceiptRepository
	invoiceRepo *repository.InvoiceRepository
	stopCh      chan struct{}
	interval    time.Duration
	batchSize   int
}

func NewBalanceReconcileJob(db *gorm.DB, cfg *config.Config) *BalanceReconcileJob {
	interval := 60 * time.Second
	if cfg != nil && cfg.Business.ReconcileIntervalS > 0 {
		interval = time.Duration(cfg.Business.ReconcileIntervalS) * time.Second
	}
	return &BalanceReconcileJob{
		db:          db,
		receiptRepo: repository.NewReceiptRepository(db),
		invoiceRepo: repository.NewInvoiceRepository(db),
		stopCh:      make(chan struct{}),
		interval:    interval,
		batchSize:   100,
	}
}

func (j *BalanceReconcileJob) Start(ctx context.Context) {
	log.Printf("[Reconcile] 余额对账任务启动，间隔 %v", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Reconcile] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[Reconcile] 任务停止")
			return
		case <-ticker.C:
			j.scanOnce(ctx)
		}
	}
}

func (j *BalanceReconcileJob) Stop() {
	close(j.stopCh)
}

func (j *BalanceReconcileJob) scanOnce(ctx context.Context) {
	receipts, err := j.receiptRepo.FindInconsistent(ctx, j.batchSize)
	if err != nil {
		log.Printf("[Reconcile] 扫描收款单失败: %v", err)
	} else {
		for _, receipt := range receipts {
			log.Printf("[Reconcile] 收款单金额不一致: id=%d, voucher=%s, paid=%d, allocated=%d, remaining=%d",
				receipt.ID, receipt.VoucherNo, receipt.PaidAmount(),
				receipt.AllocatedAmount, receipt.RemainingAmount)
		}
	}

	invoices, err := j.invoiceRepo.FindInconsistent(ctx, j.batchSize)
	if err != nil {
		log.Printf("[Reconcile] 扫描发票失败: %v", err)
		return
	}
	for _, invoice := range invoices {
		log.Printf("[Reconcile] 发票金额或状态异常: id=%d, invoiceNo=%s, received=%d, net=%d, status=%s, 推导状态=%s",
			invoice.ID, invoice.InvoiceNo, invoice.ReceivedAmount, invoice.NetTotal,
			invoice.Status, model.DeriveInvoiceStatus(invoice.ReceivedAmount, invoice.NetTotal))
	}
}

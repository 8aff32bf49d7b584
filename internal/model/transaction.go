package model

import (
	"time"
)

// ============================================================================
// 台账（client transaction）
// ============================================================================

// InvoiceType 台账行归属标签
const (
	TransTypeInvoice       = "INVOICE" // 按发票核销的明细行，一张发票一行
	TransTypeOverall       = "OVERALL" // 整体收款核销后的余量桶
	TransTypeAdvance       = "ADVANCE"
	TransTypeAdjust        = "ADJUST"
	TransTypeTickets       = "TICKETS"
	TransTypeVendorPayment = "VENDOR_PAYMENT"
)

const (
	DirectionReceive = "RECEIVE" // 入账
	DirectionPayout  = "PAYOUT"  // 出账
)

// ClientTransaction 台账表，对账与历史页的核心依据
//
// 【重要】台账设计原则：
// 1. 只追加，不修改 —— 收款单被删除时整组台账随凭证号一起删除，其余场景不动
// 2. 同一凭证号下：每笔发票核销一行（审计能看到逐张发票的分摊），
//    余量桶（OVERALL/ADVANCE/...）至多一行
// 3. TransactionNo 全局唯一标识单行，VoucherNo 标识一次收付款事件
type ClientTransaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	AgencyID      int64     `gorm:"index;not null" json:"agency_id"`
	VoucherNo     string    `gorm:"type:varchar(64);index;not null" json:"voucher_no"`
	ClientID      int64     `gorm:"index" json:"client_id"` // 供应商付款行为 0
	VendorID      int64     `gorm:"index" json:"vendor_id"` // 客户收款行为 0
	InvoiceID     int64     `gorm:"index" json:"invoice_id"`
	AllocationID  int64     `gorm:"index" json:"allocation_id"` // 关联核销明细行，余量桶为 0
	InvoiceType   string    `gorm:"type:varchar(20);not null" json:"invoice_type"`
	Direction     string    `gorm:"type:varchar(10);not null" json:"direction"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Remark        string    `gorm:"type:varchar(256)" json:"remark"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ClientTransaction) TableName() string {
	return "client_transaction"
}

// LeftoverTransType 收款归属口径 → 余量桶的台账标签
// 指定发票收款理论上不会有余量，收款单被改大后余量统一记 OVERALL
func LeftoverTransType(paymentTo string) string {
	switch paymentTo {
	case PaymentToAdvance:
		return TransTypeAdvance
	case PaymentToAdjust:
		return TransTypeAdjust
	case PaymentToTickets:
		return TransTypeTickets
	default:
		return TransTypeOverall
	}
}

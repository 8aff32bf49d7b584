package model

import (
	"time"
)

// PaymentTo 收款归属口径
const (
	PaymentToInvoice = "INVOICE" // 指定单张发票，全额核销到该发票
	PaymentToOverall = "OVERALL" // 不指定发票，按发票列表贪心核销，余量进 OVERALL 台账
	PaymentToAdvance = "ADVANCE" // 预收款，不核销任何发票
	PaymentToAdjust  = "ADJUST"  // 调整款，不核销任何发票
	PaymentToTickets = "TICKETS" // 票务专款，不核销任何发票
)

// ValidPaymentTo 归属口径合法性
func ValidPaymentTo(paymentTo string) bool {
	switch paymentTo {
	case PaymentToInvoice, PaymentToOverall, PaymentToAdvance, PaymentToAdjust, PaymentToTickets:
		return true
	}
	return false
}

// MoneyReceipt 收款单
// 不变量：PaidAmount = Amount - Discount > 0，
// 且任意时刻 AllocatedAmount + RemainingAmount = PaidAmount
type MoneyReceipt struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID        int64     `gorm:"uniqueIndex:uk_receipt_agency_voucher;not null" json:"agency_id"`
	ClientID        int64     `gorm:"index;not null" json:"client_id"`
	VoucherNo       string    `gorm:"type:varchar(64);uniqueIndex:uk_receipt_agency_voucher;not null" json:"voucher_no"` // 旅行社内唯一，各家都从 MR-0001 起号
	AccountID       int64     `gorm:"index;not null" json:"account_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	Discount        int64     `gorm:"not null;default:0" json:"discount"`
	PaymentTo       string    `gorm:"type:varchar(16);not null" json:"payment_to"`
	InvoiceID       int64     `gorm:"index" json:"invoice_id"` // 指定发票收款时 >0
	AllocatedAmount int64     `gorm:"not null;default:0" json:"allocated_amount"`
	RemainingAmount int64     `gorm:"not null;default:0" json:"remaining_amount"`
	Remark          string    `gorm:"type:varchar(256)" json:"remark"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MoneyReceipt) TableName() string {
	return "money_receipt"
}

// PaidAmount 实收金额
func (r *MoneyReceipt) PaidAmount() int64 {
	return r.Amount - r.Discount
}

// MoneyReceiptAllocation 收款核销明细：一笔收款分摊到一张发票的金额
// 一个收款单的 AppliedAmount 之和不超过其实收金额
type MoneyReceiptAllocation struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID       int64     `gorm:"index;not null" json:"agency_id"`
	MoneyReceiptID int64     `gorm:"index;not null" json:"money_receipt_id"`
	InvoiceID      int64     `gorm:"index;not null" json:"invoice_id"`
	AppliedAmount  int64     `gorm:"not null" json:"applied_amount"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MoneyReceiptAllocation) TableName() string {
	return "money_receipt_allocation"
}

package model

import (
	"time"
)

const (
	VendorBalanceDue     = "due"     // 旅行社欠供应商
	VendorBalanceAdvance = "advance" // 旅行社预付了供应商
)

// Vendor 供应商表
// Balance 统一存带符号净值：正数 = 预付（advance），负数 = 欠款（due）。
// 对外的 {type, amount} 形态只在边界上转换，避免正负号判断散落各处
type Vendor struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID  int64     `gorm:"index;not null" json:"agency_id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	Balance   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vendor) TableName() string {
	return "vendor"
}

// VendorBalanceState 对外暴露的余额形态，due 与 advance 互斥
type VendorBalanceState struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

// BalanceState 带符号净值 → {type, amount}
func (v *Vendor) BalanceState() VendorBalanceState {
	if v.Balance > 0 {
		return VendorBalanceState{Type: VendorBalanceAdvance, Amount: v.Balance}
	}
	return VendorBalanceState{Type: VendorBalanceDue, Amount: -v.Balance}
}

// SignedBalance {type, amount} → 带符号净值
func SignedBalance(state VendorBalanceState) int64 {
	if state.Type == VendorBalanceAdvance {
		return state.Amount
	}
	return -state.Amount
}

// VendorPayment 供应商付款单
// 不变量：TotalAmount = Amount + VendorAit（代扣税）
type VendorPayment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID    int64     `gorm:"uniqueIndex:uk_payment_agency_voucher;not null" json:"agency_id"`
	VoucherNo   string    `gorm:"type:varchar(64);uniqueIndex:uk_payment_agency_voucher;not null" json:"voucher_no"` // 旅行社内唯一
	AccountID   int64     `gorm:"index;not null" json:"account_id"`
	InvoiceID   int64     `gorm:"index" json:"invoice_id"` // 针对某张发票的成本付款时 >0
	VendorID    int64     `gorm:"index" json:"vendor_id"`  // 单一供应商直付时 >0
	Amount      int64     `gorm:"not null" json:"amount"`
	VendorAit   int64     `gorm:"not null;default:0" json:"vendor_ait"`
	TotalAmount int64     `gorm:"not null" json:"total_amount"`
	Remark      string    `gorm:"type:varchar(256)" json:"remark"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VendorPayment) TableName() string {
	return "vendor_payment"
}

// VendorPaymentItem 付款核销明细：一笔付款分摊到一条发票成本行的金额
type VendorPaymentItem struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID        int64     `gorm:"index;not null" json:"agency_id"`
	VendorPaymentID int64     `gorm:"index;not null" json:"vendor_payment_id"`
	VendorID        int64     `gorm:"index;not null" json:"vendor_id"`
	InvoiceID       int64     `gorm:"index;not null" json:"invoice_id"`
	InvoiceItemID   int64     `gorm:"index;not null" json:"invoice_item_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VendorPaymentItem) TableName() string {
	return "vendor_payment_item"
}

package model

import (
	"time"
)

const (
	InvoiceStatusDue     = "DUE"
	InvoiceStatusPartial = "PARTIAL"
	InvoiceStatusPaid    = "PAID"
)

// DeriveInvoiceStatus 按收款进度推导发票状态
// received >= net 即 PAID，0 < received < net 为 PARTIAL，否则 DUE
func DeriveInvoiceStatus(received, netTotal int64) string {
	switch {
	case received >= netTotal:
		return InvoiceStatusPaid
	case received > 0:
		return InvoiceStatusPartial
	default:
		return InvoiceStatusDue
	}
}

// Invoice 发票头
// 不变量：0 <= ReceivedAmount <= NetTotal，Status 始终等于推导值
type Invoice struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID       int64     `gorm:"uniqueIndex:uk_invoice_agency_no;not null" json:"agency_id"`
	InvoiceNo      string    `gorm:"type:varchar(64);uniqueIndex:uk_invoice_agency_no;not null" json:"invoice_no"` // 业务主键，旅行社内唯一，同号重复提交按原单更新
	ClientID       int64     `gorm:"index;not null" json:"client_id"`
	NetTotal       int64     `gorm:"not null" json:"net_total"`
	ReceivedAmount int64     `gorm:"not null;default:0" json:"received_amount"`
	Status         string    `gorm:"type:varchar(16);index;not null" json:"status"`
	Remark         string    `gorm:"type:varchar(256)" json:"remark"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoice"
}

// Due 发票剩余欠款
func (i *Invoice) Due() int64 {
	return i.NetTotal - i.ReceivedAmount
}

// InvoiceItem 发票成本行：某个供应商在这张发票里承担的成本
// 不变量：0 <= PaidAmount <= TotalCost
type InvoiceItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID   int64     `gorm:"index;not null" json:"invoice_id"`
	VendorID    int64     `gorm:"index;not null" json:"vendor_id"`
	Description string    `gorm:"type:varchar(256)" json:"description"`
	TotalCost   int64     `gorm:"not null" json:"total_cost"`
	PaidAmount  int64     `gorm:"not null;default:0" json:"paid_amount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InvoiceItem) TableName() string {
	return "invoice_item"
}

// Due 成本行剩余应付
func (it *InvoiceItem) Due() int64 {
	return it.TotalCost - it.PaidAmount
}

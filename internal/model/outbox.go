package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// 台账事件类型，随业务操作在同一个单位工作内写入 outbox
const (
	EventReceiptCreated       = "money_receipt.created"
	EventReceiptUpdated       = "money_receipt.updated"
	EventReceiptDeleted       = "money_receipt.deleted"
	EventAllocationCreated    = "receipt_allocation.created"
	EventAllocationDeleted    = "receipt_allocation.deleted"
	EventInvoiceCreated       = "invoice.created"
	EventInvoiceUpserted      = "invoice.upserted"
	EventInvoiceUpdated       = "invoice.updated"
	EventInvoiceDeleted       = "invoice.deleted"
	EventVendorPaymentCreated = "vendor_payment.created"
	EventVendorPaymentUpdated = "vendor_payment.updated"
	EventVendorPaymentDeleted = "vendor_payment.deleted"
)

// OutboxMessage 事务性发件箱：与业务写入同一个单位工作落库，
// 后台任务再投递到 Kafka，保证台账事件不丢不超前
type OutboxMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageKey string    `gorm:"type:varchar(64);not null" json:"message_key"` // 凭证号或发票号
	Topic      string    `gorm:"type:varchar(64);not null" json:"topic"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_message"
}

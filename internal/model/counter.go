package model

import (
	"fmt"
	"time"
)

// 凭证类别
const (
	VoucherClassReceipt       = "MR" // 收款单
	VoucherClassExpense       = "EX" // 费用单
	VoucherClassVendorPayment = "VP" // 供应商付款单
)

// Counter 凭证号计数器，每个（类别，旅行社）一行
// Seq 只增不减：凭证被删除后序号也不复用
type Counter struct {
	CounterKey string    `gorm:"column:counter_key;type:varchar(64);primaryKey" json:"counter_key"`
	Seq        int64     `gorm:"not null;default:0" json:"seq"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Counter) TableName() string {
	return "counter"
}

// CounterKeyFor 计数器主键
func CounterKeyFor(class string, agencyID int64) string {
	return fmt.Sprintf("%s:%d", class, agencyID)
}

// FormatVoucher 凭证号格式：前缀-零填充序号，如 MR-0001
// 序号超过填充位数后自然变长，不截断
func FormatVoucher(class string, seq int64, padWidth int) string {
	if padWidth <= 0 {
		padWidth = 4
	}
	return fmt.Sprintf("%s-%0*d", class, padWidth, seq)
}

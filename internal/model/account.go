package model

import (
	"time"
)

const (
	AccountTypeCash   = "CASH"
	AccountTypeBank   = "BANK"
	AccountTypeMobile = "MOBILE" // 移动支付钱包
	AccountTypeCard   = "CARD"
)

// Account 资金账户表
// LastBalance 只允许通过收付款操作按 ±amount 原子增减
type Account struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID    int64      `gorm:"index;not null" json:"agency_id"`
	Name        string     `gorm:"type:varchar(128);not null" json:"name"`
	Type        string     `gorm:"type:varchar(16);not null" json:"type"`
	LastBalance int64      `gorm:"not null;default:0" json:"last_balance"`
	LastUsedAt  *time.Time `json:"last_used_at"` // 有资金变动即刷新
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}

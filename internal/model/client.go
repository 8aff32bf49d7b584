package model

import (
	"time"
)

// Client 客户表
// PresentBalance 为带符号余额：正数表示旅行社欠客户（客户信用），
// 开票减少余额，收款增加余额。余额只允许被开票/收款操作按精确差额改动
type Client struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AgencyID       int64     `gorm:"index;not null" json:"agency_id"` // 所属旅行社（租户）
	Name           string    `gorm:"type:varchar(128);not null" json:"name"`
	Phone          string    `gorm:"type:varchar(32)" json:"phone"`
	PresentBalance int64     `gorm:"not null;default:0" json:"present_balance"`
	CreditLimit    int64     `gorm:"not null;default:0" json:"credit_limit"` // 0 表示不限额
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "client"
}

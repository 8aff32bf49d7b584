package service

import (
	"fmt"
	"testing"

	"travelbill/internal/infrastructure/database"
	"travelbill/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAgency = int64(1)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestRunner(db *gorm.DB) *database.TxRunner {
	return database.NewTxRunner(db, true)
}

// newFallbackRunner 非事务降级模式，中途失败会残留部分状态
func newFallbackRunner(db *gorm.DB) *database.TxRunner {
	return database.NewTxRunner(db, false)
}

func seedClient(t *testing.T, db *gorm.DB, balance, creditLimit int64) *model.Client {
	c := &model.Client{AgencyID: testAgency, Name: "测试客户", PresentBalance: balance, CreditLimit: creditLimit}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func seedAccount(t *testing.T, db *gorm.DB, balance int64) *model.Account {
	a := &model.Account{AgencyID: testAgency, Name: "现金账户", Type: model.AccountTypeCash, LastBalance: balance}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

func seedVendor(t *testing.T, db *gorm.DB, balance int64) *model.Vendor {
	v := &model.Vendor{AgencyID: testAgency, Name: "测试供应商", Balance: balance}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	return v
}

func clientBalance(t *testing.T, db *gorm.DB, id int64) int64 {
	var c model.Client
	if err := db.First(&c, id).Error; err != nil {
		t.Fatalf("load client: %v", err)
	}
	return c.PresentBalance
}

func accountBalance(t *testing.T, db *gorm.DB, id int64) int64 {
	var a model.Account
	if err := db.First(&a, id).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return a.LastBalance
}

func vendorBalance(t *testing.T, db *gorm.DB, id int64) int64 {
	var v model.Vendor
	if err := db.First(&v, id).Error; err != nil {
		t.Fatalf("load vendor: %v", err)
	}
	return v.Balance
}

func loadInvoice(t *testing.T, db *gorm.DB, id int64) *model.Invoice {
	var inv model.Invoice
	if err := db.First(&inv, id).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	return &inv
}

func ledgerRowsByVoucher(t *testing.T, db *gorm.DB, voucherNo string) []*model.ClientTransaction {
	var rows []*model.ClientTransaction
	if err := db.Where("voucher_no = ?", voucherNo).Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	return rows
}

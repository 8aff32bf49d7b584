package service

import (
	"context"
	"testing"

	"travelbill/internal/model"
	"travelbill/pkg/errs"
)

func TestVendorPaymentDirect(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	svc := NewVendorPaymentService(db, newTestRunner(db), nil, nil)

	account := seedAccount(t, db, 10000)
	vendor := seedVendor(t, db, 0)

	payment, err := svc.CreateVendorPayment(ctx, testAgency, &CreateVendorPaymentRequest{
		AccountID: account.ID,
		Amount:    500,
		VendorAit: 50,
		VendorID:  vendor.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payment.VoucherNo != "VP-0001" {
		t.Fatalf("expected VP-0001, got %s", payment.VoucherNo)
	}
	if payment.TotalAmount != 550 {
		t.Fatalf("expected total 550, got %d", payment.TotalAmount)
	}
	// 供应商余额只加本金，账户按含税总额出账
	if got := vendorBalance(t, db, vendor.ID); got != 500 {
		t.Fatalf("expected vendor balance 500, got %d", got)
	}
	if got := accountBalance(t, db, account.ID); got != 9450 {
		t.Fatalf("expected account 9450, got %d", got)
	}

	rows := ledgerRowsByVoucher(t, db, payment.VoucherNo)
	if len(rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(rows))
	}
	if rows[0].InvoiceType != model.TransTypeVendorPayment || rows[0].Direction != model.DirectionPayout || rows[0].Amount != 500 {
		t.Fatalf("unexpected ledger row: %+v", rows[0])
	}

	state, err := svc.GetVendorBalance(ctx, testAgency, vendor.ID)
	if err != nil {
		t.Fatalf("balance state: %v", err)
	}
	if state.Type != model.VendorBalanceAdvance || state.Amount != 500 {
		t.Fatalf("expected advance 500, got %+v", state)
	}
}

func TestVendorPaymentGreedyItemAllocation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewVendorPaymentService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)
	vendor := seedVendor(t, db, -700) // 欠供应商 700

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 1000,
		Items: []InvoiceItemInput{
			{VendorID: vendor.ID, Description: "机票", TotalCost: 300},
			{VendorID: vendor.ID, Description: "酒店", TotalCost: 400},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	payment, err := svc.CreateVendorPayment(ctx, testAgency, &CreateVendorPaymentRequest{
		AccountID: account.ID,
		Amount:    500,
		InvoiceID: invoice.ID,
		VendorID:  vendor.ID,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	// 自然顺序贪心：第一行吃满 300，第二行吃剩余 200
	var items []*model.InvoiceItem
	if err := db.Where("invoice_id = ?", invoice.ID).Order("id ASC").Find(&items).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	if items[0].PaidAmount != 300 || items[1].PaidAmount != 200 {
		t.Fatalf("expected paid 300/200, got %d/%d", items[0].PaidAmount, items[1].PaidAmount)
	}

	var paymentItems []*model.VendorPaymentItem
	if err := db.Where("vendor_payment_id = ?", payment.ID).Order("id ASC").Find(&paymentItems).Error; err != nil {
		t.Fatalf("load payment items: %v", err)
	}
	if len(paymentItems) != 2 || paymentItems[0].Amount != 300 || paymentItems[1].Amount != 200 {
		t.Fatalf("unexpected payment items: %+v", paymentItems)
	}

	// 欠 700 付 500 → 还欠 200
	state, err := svc.GetVendorBalance(ctx, testAgency, vendor.ID)
	if err != nil {
		t.Fatalf("balance state: %v", err)
	}
	if state.Type != model.VendorBalanceDue || state.Amount != 200 {
		t.Fatalf("expected due 200, got %+v", state)
	}
}

func TestVendorPaymentUpdateReplays(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewVendorPaymentService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 1000)
	vendor := seedVendor(t, db, 0)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 1000,
		Items: []InvoiceItemInput{
			{VendorID: vendor.ID, TotalCost: 300},
			{VendorID: vendor.ID, TotalCost: 400},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	payment, err := svc.CreateVendorPayment(ctx, testAgency, &CreateVendorPaymentRequest{
		AccountID: account.ID,
		Amount:    500,
		VendorAit: 50,
		InvoiceID: invoice.ID,
		VendorID:  vendor.ID,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	updated, err := svc.UpdateVendorPayment(ctx, testAgency, payment.ID, &CreateVendorPaymentRequest{
		AccountID: account.ID,
		Amount:    200,
		InvoiceID: invoice.ID,
		VendorID:  vendor.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.VoucherNo != payment.VoucherNo {
		t.Fatalf("update must keep voucher, got %s vs %s", updated.VoucherNo, payment.VoucherNo)
	}
	if updated.TotalAmount != 200 {
		t.Fatalf("expected total 200, got %d", updated.TotalAmount)
	}

	// 旧影响整单消失，只剩新影响
	var items []*model.InvoiceItem
	if err := db.Where("invoice_id = ?", invoice.ID).Order("id ASC").Find(&items).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	if items[0].PaidAmount != 200 || items[1].PaidAmount != 0 {
		t.Fatalf("expected paid 200/0 after replay, got %d/%d", items[0].PaidAmount, items[1].PaidAmount)
	}
	if got := vendorBalance(t, db, vendor.ID); got != 200 {
		t.Fatalf("expected vendor balance 200, got %d", got)
	}
	// 1000 - 550 + 550 - 200
	if got := accountBalance(t, db, account.ID); got != 800 {
		t.Fatalf("expected account 800, got %d", got)
	}
}

func TestVendorPaymentDeleteFullReverse(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewVendorPaymentService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 1000)
	vendor := seedVendor(t, db, 0)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 500,
		Items:     []InvoiceItemInput{{VendorID: vendor.ID, TotalCost: 500}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	payment, err := svc.CreateVendorPayment(ctx, testAgency, &CreateVendorPaymentRequest{
		AccountID: account.ID,
		Amount:    500,
		InvoiceID: invoice.ID,
		VendorID:  vendor.ID,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	if err := svc.DeleteVendorPayment(ctx, testAgency, payment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var item model.InvoiceItem
	if err := db.Where("invoice_id = ?", invoice.ID).First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.PaidAmount != 0 {
		t.Fatalf("expected item paid restored to 0, got %d", item.PaidAmount)
	}
	if got := vendorBalance(t, db, vendor.ID); got != 0 {
		t.Fatalf("expected vendor balance 0, got %d", got)
	}
	if got := accountBalance(t, db, account.ID); got != 1000 {
		t.Fatalf("expected account restored to 1000, got %d", got)
	}
	if rows := ledgerRowsByVoucher(t, db, payment.VoucherNo); len(rows) != 0 {
		t.Fatalf("expected ledger rows gone, got %d", len(rows))
	}
	if _, err := svc.paymentRepo.GetByID(ctx, testAgency, payment.ID); !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected payment gone, got %v", err)
	}
}

func TestVendorPaymentEntrySumMismatch(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	svc := NewVendorPaymentService(db, newTestRunner(db), nil, nil)

	account := seedAccount(t, db, 0)
	v1 := seedVendor(t, db, 0)
	v2 := seedVendor(t, db, 0)

	_, err := svc.CreateVendorPayment(ctx, testAgency, &CreateVendorPaymentRequest{
		AccountID: account.ID,
		Amount:    500,
		Entries: []VendorPaymentEntry{
			{VendorID: v1.ID, Amount: 300},
			{VendorID: v2.ID, Amount: 100},
		},
	})
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVendorPaymentSplitEntries(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	svc := NewVendorPaymentService(db, newTestRunner(db), nil, nil)

	account := seedAccount(t, db, 1000)
	v1 := seedVendor(t, db, 0)
	v2 := seedVendor(t, db, -100)

	payment, err := svc.CreateVendorPayment(ctx, testAgency, &CreateVendorPaymentRequest{
		AccountID: account.ID,
		Amount:    500,
		Entries: []VendorPaymentEntry{
			{VendorID: v1.ID, Amount: 300},
			{VendorID: v2.ID, Amount: 200},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := vendorBalance(t, db, v1.ID); got != 300 {
		t.Fatalf("expected v1 balance 300, got %d", got)
	}
	if got := vendorBalance(t, db, v2.ID); got != 100 {
		t.Fatalf("expected v2 balance 100, got %d", got)
	}
	rows := ledgerRowsByVoucher(t, db, payment.VoucherNo)
	if len(rows) != 2 {
		t.Fatalf("expected one ledger row per vendor, got %d", len(rows))
	}
}

func TestVendorPaymentUpdateAccountSwap(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	svc := NewVendorPaymentService(db, runner, nil, nil)

	oldAccount := seedAccount(t, db, 1000)
	newAccount := seedAccount(t, db, 1000)
	vendor := seedVendor(t, db, 0)

	payment, err := svc.CreateVendorPayment(ctx, testAgency, &CreateVendorPaymentRequest{
		AccountID: oldAccount.ID,
		Amount:    500,
		VendorID:  vendor.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateVendorPayment(ctx, testAgency, payment.ID, &CreateVendorPaymentRequest{
		AccountID: newAccount.ID,
		Amount:    300,
		VendorID:  vendor.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AccountID != newAccount.ID {
		t.Fatalf("expected account moved, got %d", updated.AccountID)
	}

	// 旧账户整单回账，新账户按新总额出账
	if got := accountBalance(t, db, oldAccount.ID); got != 1000 {
		t.Fatalf("expected old account restored to 1000, got %d", got)
	}
	if got := accountBalance(t, db, newAccount.ID); got != 700 {
		t.Fatalf("expected new account 700, got %d", got)
	}
	if got := vendorBalance(t, db, vendor.ID); got != 300 {
		t.Fatalf("expected vendor balance 300, got %d", got)
	}
}

package service

import (
	"context"
	"testing"

	"travelbill/internal/model"
	"travelbill/pkg/errs"
)

func TestReceiptNamedInvoiceFullAllocation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 10000)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 1000,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    450,
		Discount:  50,
		PaymentTo: model.PaymentToInvoice,
		InvoiceID: invoice.ID,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	if receipt.VoucherNo != "MR-0001" {
		t.Fatalf("expected voucher MR-0001, got %s", receipt.VoucherNo)
	}
	if receipt.AllocatedAmount != 400 || receipt.RemainingAmount != 0 {
		t.Fatalf("expected allocated=400 remaining=0, got %d/%d", receipt.AllocatedAmount, receipt.RemainingAmount)
	}

	inv := loadInvoice(t, db, invoice.ID)
	if inv.ReceivedAmount != 400 || inv.Status != model.InvoiceStatusPartial {
		t.Fatalf("expected received=400 PARTIAL, got %d %s", inv.ReceivedAmount, inv.Status)
	}
	// 开票 -1000，实收 +400
	if got := clientBalance(t, db, client.ID); got != -600 {
		t.Fatalf("expected client balance -600, got %d", got)
	}
	if got := accountBalance(t, db, account.ID); got != 10400 {
		t.Fatalf("expected account balance 10400, got %d", got)
	}

	rows := ledgerRowsByVoucher(t, db, receipt.VoucherNo)
	if len(rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(rows))
	}
	if rows[0].InvoiceType != model.TransTypeInvoice || rows[0].Amount != 400 || rows[0].AllocationID == 0 {
		t.Fatalf("unexpected ledger row: %+v", rows[0])
	}
}

func TestReceiptOverallGreedyNewestFirst(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	older, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 500,
	})
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	newer, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-002", ClientID: client.ID, NetTotal: 800,
	})
	if err != nil {
		t.Fatalf("create newer: %v", err)
	}

	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    1000,
		PaymentTo: model.PaymentToOverall,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	// 最新创建的发票优先吃满，旧发票吃剩余
	if got := loadInvoice(t, db, newer.ID); got.ReceivedAmount != 800 || got.Status != model.InvoiceStatusPaid {
		t.Fatalf("newer invoice: expected 800 PAID, got %d %s", got.ReceivedAmount, got.Status)
	}
	if got := loadInvoice(t, db, older.ID); got.ReceivedAmount != 200 || got.Status != model.InvoiceStatusPartial {
		t.Fatalf("older invoice: expected 200 PARTIAL, got %d %s", got.ReceivedAmount, got.Status)
	}
	if receipt.AllocatedAmount != 1000 || receipt.RemainingAmount != 0 {
		t.Fatalf("expected allocated=1000 remaining=0, got %d/%d", receipt.AllocatedAmount, receipt.RemainingAmount)
	}

	var allocCount int64
	if err := db.Model(&model.MoneyReceiptAllocation{}).Where("money_receipt_id = ?", receipt.ID).Count(&allocCount).Error; err != nil {
		t.Fatalf("count allocations: %v", err)
	}
	if allocCount != 2 {
		t.Fatalf("expected 2 allocations, got %d", allocCount)
	}
}

func TestReceiptOverallLeftoverBucket(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	if _, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 300,
	}); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    500,
		PaymentTo: model.PaymentToOverall,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if receipt.AllocatedAmount != 300 || receipt.RemainingAmount != 200 {
		t.Fatalf("expected 300/200, got %d/%d", receipt.AllocatedAmount, receipt.RemainingAmount)
	}

	rows := ledgerRowsByVoucher(t, db, receipt.VoucherNo)
	if len(rows) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(rows))
	}
	leftover := rows[1]
	if leftover.InvoiceType != model.TransTypeOverall || leftover.Amount != 200 || leftover.AllocationID != 0 {
		t.Fatalf("unexpected leftover row: %+v", leftover)
	}
}

func TestReceiptAdvanceAllocatesNothing(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 1000,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    400,
		PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	// 预收款不碰发票
	if got := loadInvoice(t, db, invoice.ID); got.ReceivedAmount != 0 {
		t.Fatalf("advance receipt must not touch invoices, got received=%d", got.ReceivedAmount)
	}
	if receipt.AllocatedAmount != 0 || receipt.RemainingAmount != 400 {
		t.Fatalf("expected 0/400, got %d/%d", receipt.AllocatedAmount, receipt.RemainingAmount)
	}

	rows := ledgerRowsByVoucher(t, db, receipt.VoucherNo)
	if len(rows) != 1 || rows[0].InvoiceType != model.TransTypeAdvance {
		t.Fatalf("expected single ADVANCE ledger row, got %+v", rows)
	}
}

func TestReceiptExceedingNamedInvoiceDueRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 300,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	_, err = svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    500,
		PaymentTo: model.PaymentToInvoice,
		InvoiceID: invoice.ID,
	})
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// 拒绝的收款不留任何痕迹
	if got := clientBalance(t, db, client.ID); got != -300 {
		t.Fatalf("expected balance unchanged -300, got %d", got)
	}
	var count int64
	if err := db.Model(&model.MoneyReceipt{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no receipt rows, got %d", count)
	}
}

func TestUpdateReceiptPaidDelta(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    400,
		PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateMoneyReceipt(ctx, testAgency, receipt.ID, &UpdateReceiptRequest{
		Amount:    650,
		Discount:  50,
		AccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RemainingAmount != 600 {
		t.Fatalf("expected remaining 600, got %d", updated.RemainingAmount)
	}
	if got := clientBalance(t, db, client.ID); got != 600 {
		t.Fatalf("expected client balance 600, got %d", got)
	}
	if got := accountBalance(t, db, account.ID); got != 600 {
		t.Fatalf("expected account balance 600, got %d", got)
	}

	// 余量桶随新余量同步
	rows := ledgerRowsByVoucher(t, db, receipt.VoucherNo)
	if len(rows) != 1 || rows[0].Amount != 600 {
		t.Fatalf("expected leftover ledger 600, got %+v", rows)
	}
}

func TestUpdateReceiptAccountSwap(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	oldAccount := seedAccount(t, db, 1000)
	newAccount := seedAccount(t, db, 1000)

	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: oldAccount.ID,
		Amount:    400,
		PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateMoneyReceipt(ctx, testAgency, receipt.ID, &UpdateReceiptRequest{
		Amount:    400,
		AccountID: newAccount.ID,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// 旧账户全额回冲，新账户全额入账
	if got := accountBalance(t, db, oldAccount.ID); got != 1000 {
		t.Fatalf("expected old account restored to 1000, got %d", got)
	}
	if got := accountBalance(t, db, newAccount.ID); got != 1400 {
		t.Fatalf("expected new account 1400, got %d", got)
	}
}

func TestUpdateReceiptBelowAllocatedRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 500,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    500,
		PaymentTo: model.PaymentToInvoice,
		InvoiceID: invoice.ID,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	_, err = svc.UpdateMoneyReceipt(ctx, testAgency, receipt.ID, &UpdateReceiptRequest{
		Amount:    300,
		AccountID: account.ID,
	})
	if !errs.IsKind(err, errs.KindBusinessRule) {
		t.Fatalf("expected business_rule error, got %v", err)
	}
}

func TestDeleteReceiptFullReverse(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 1000)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 800,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    800,
		PaymentTo: model.PaymentToInvoice,
		InvoiceID: invoice.ID,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if got := loadInvoice(t, db, invoice.ID); got.Status != model.InvoiceStatusPaid {
		t.Fatalf("expected PAID before delete, got %s", got.Status)
	}

	if err := svc.DeleteMoneyReceipt(ctx, testAgency, receipt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	inv := loadInvoice(t, db, invoice.ID)
	if inv.ReceivedAmount != 0 || inv.Status != model.InvoiceStatusDue {
		t.Fatalf("expected invoice back to 0 DUE, got %d %s", inv.ReceivedAmount, inv.Status)
	}
	if got := clientBalance(t, db, client.ID); got != -800 {
		t.Fatalf("expected client balance -800, got %d", got)
	}
	if got := accountBalance(t, db, account.ID); got != 1000 {
		t.Fatalf("expected account restored to 1000, got %d", got)
	}
	if rows := ledgerRowsByVoucher(t, db, receipt.VoucherNo); len(rows) != 0 {
		t.Fatalf("expected ledger rows gone, got %d", len(rows))
	}
	var allocCount int64
	if err := db.Model(&model.MoneyReceiptAllocation{}).Count(&allocCount).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if allocCount != 0 {
		t.Fatalf("expected allocations gone, got %d", allocCount)
	}
}

func TestPostHocAllocationLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 1000,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    500,
		PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	clientBefore := clientBalance(t, db, client.ID)
	accountBefore := accountBalance(t, db, account.ID)

	// 事后核销 300 到发票
	updated, err := svc.CreateReceiptAllocations(ctx, testAgency, receipt.ID, []AllocationEntry{
		{InvoiceID: invoice.ID, Amount: 300},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if updated.AllocatedAmount != 300 || updated.RemainingAmount != 200 {
		t.Fatalf("expected 300/200, got %d/%d", updated.AllocatedAmount, updated.RemainingAmount)
	}
	if got := loadInvoice(t, db, invoice.ID); got.ReceivedAmount != 300 || got.Status != model.InvoiceStatusPartial {
		t.Fatalf("expected invoice 300 PARTIAL, got %d %s", got.ReceivedAmount, got.Status)
	}
	// 钱早已入账：客户与账户余额不动
	if got := clientBalance(t, db, client.ID); got != clientBefore {
		t.Fatalf("post-hoc allocation must not touch client balance")
	}
	if got := accountBalance(t, db, account.ID); got != accountBefore {
		t.Fatalf("post-hoc allocation must not touch account balance")
	}

	// 余量超限拒绝
	if _, err := svc.CreateReceiptAllocations(ctx, testAgency, receipt.ID, []AllocationEntry{
		{InvoiceID: invoice.ID, Amount: 300},
	}); !errs.IsKind(err, errs.KindBusinessRule) {
		t.Fatalf("expected business_rule error, got %v", err)
	}

	// 撤销核销
	allocations, err := svc.ListReceiptAllocations(ctx, testAgency, receipt.ID)
	if err != nil || len(allocations) != 1 {
		t.Fatalf("list allocations: %v, n=%d", err, len(allocations))
	}
	reverted, err := svc.DeleteReceiptAllocation(ctx, testAgency, receipt.ID, allocations[0].ID)
	if err != nil {
		t.Fatalf("deallocate: %v", err)
	}
	if reverted.AllocatedAmount != 0 || reverted.RemainingAmount != 500 {
		t.Fatalf("expected 0/500 after revert, got %d/%d", reverted.AllocatedAmount, reverted.RemainingAmount)
	}
	if got := loadInvoice(t, db, invoice.ID); got.ReceivedAmount != 0 || got.Status != model.InvoiceStatusDue {
		t.Fatalf("expected invoice back to DUE, got %d %s", got.ReceivedAmount, got.Status)
	}
}

func TestVoucherSequenceNeverReused(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	first, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID: client.ID, AccountID: account.ID, Amount: 100, PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID: client.ID, AccountID: account.ID, Amount: 100, PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.VoucherNo != "MR-0001" || second.VoucherNo != "MR-0002" {
		t.Fatalf("expected MR-0001/MR-0002, got %s/%s", first.VoucherNo, second.VoucherNo)
	}

	// 删除不回收序号
	if err := svc.DeleteMoneyReceipt(ctx, testAgency, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	third, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID: client.ID, AccountID: account.ID, Amount: 100, PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if third.VoucherNo != "MR-0003" {
		t.Fatalf("expected MR-0003, got %s", third.VoucherNo)
	}
}

func TestVoucherSequenceScopedPerAgency(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newTestRunner(db)
	svc := NewReceiptService(db, runner, nil, nil)

	client1 := seedClient(t, db, 0, 0)
	account1 := seedAccount(t, db, 0)
	client2 := &model.Client{AgencyID: testAgency + 1, Name: "另一家的客户"}
	if err := db.Create(client2).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	account2 := &model.Account{AgencyID: testAgency + 1, Name: "另一家的账户", Type: model.AccountTypeCash}
	if err := db.Create(account2).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}

	first, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID: client1.ID, AccountID: account1.ID, Amount: 100, PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("agency 1 receipt: %v", err)
	}

	// 每家旅行社独立起号，第二家的第一张收款单同样是 MR-0001
	second, err := svc.CreateMoneyReceipt(ctx, testAgency+1, &CreateReceiptRequest{
		ClientID: client2.ID, AccountID: account2.ID, Amount: 100, PaymentTo: model.PaymentToAdvance,
	})
	if err != nil {
		t.Fatalf("agency 2 first receipt must succeed: %v", err)
	}
	if first.VoucherNo != "MR-0001" || second.VoucherNo != "MR-0001" {
		t.Fatalf("expected MR-0001 for both agencies, got %s/%s", first.VoucherNo, second.VoucherNo)
	}
}

func TestFallbackModeSurfacesPartialFailure(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	runner := newFallbackRunner(db)
	invoiceSvc := NewInvoiceService(db, runner, nil)
	svc := NewReceiptService(db, runner, nil, nil)

	client := seedClient(t, db, 0, 0)
	account := seedAccount(t, db, 0)

	invoice, err := invoiceSvc.CreateInvoice(ctx, testAgency, &CreateInvoiceRequest{
		InvoiceNo: "INV-001", ClientID: client.ID, NetTotal: 500,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	receipt, err := svc.CreateMoneyReceipt(ctx, testAgency, &CreateReceiptRequest{
		ClientID:  client.ID,
		AccountID: account.ID,
		Amount:    500,
		PaymentTo: model.PaymentToInvoice,
		InvoiceID: invoice.ID,
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	// 人为制造不一致：发票收款进度低于核销明细记录的金额，
	// 删除收款单时回冲会在序列中途失败
	if err := db.Model(&model.Invoice{}).Where("id = ?", invoice.ID).
		UpdateColumn("received_amount", 100).Error; err != nil {
		t.Fatalf("corrupt invoice: %v", err)
	}

	err = svc.DeleteMoneyReceipt(ctx, testAgency, receipt.ID)
	if !errs.IsKind(err, errs.KindPartialFailure) {
		t.Fatalf("expected partial_failure in fallback mode, got %v", err)
	}

	// 降级模式没有回滚：失败前的客户余额回冲已经落库
	if got := clientBalance(t, db, client.ID); got != -500 {
		t.Fatalf("expected residual client balance -500, got %d", got)
	}
}

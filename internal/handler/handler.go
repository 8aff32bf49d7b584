package handler

import (
	"strconv"

	"travelbill/internal/config"
	"travelbill/internal/infrastructure/database"
	"travelbill/internal/service"
	"travelbill/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	invoiceService *service.InvoiceService
	receiptService *service.ReceiptService
	paymentService *service.VendorPaymentService
	accountService *service.AccountService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, runner *database.TxRunner, cfg *config.Config) *Handler {
	return &Handler{
		invoiceService: service.NewInvoiceService(db, runner, cfg),
		receiptService: service.NewReceiptService(db, runner, rdb, cfg),
		paymentService: service.NewVendorPaymentService(db, runner, rdb, cfg),
		accountService: service.NewAccountService(db),
	}
}

// pathID 解析路径里的数字主键
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, name+" 参数错误")
		return 0, false
	}
	return id, true
}

// queryInt64 解析可选的数字查询参数，缺省为 0
func queryInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}

// pagination 分页参数，带默认值
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}
	return page, pageSize
}

// ============================================================
// 资金账户接口
// ============================================================

// ListAccounts 账户列表
// GET /api/v1/account/list
func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), agencyID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"accounts": accounts})
}

// GetAccountBalance 查询账户余额
// GET /api/v1/account/:id/balance
func (h *Handler) GetAccountBalance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	account, err := h.accountService.GetAccount(c.Request.Context(), agencyID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"account_id":   account.ID,
		"name":         account.Name,
		"type":         account.Type,
		"last_balance": account.LastBalance,
		"last_used_at": account.LastUsedAt,
	})
}

// ListClientLedger 客户台账
// GET /api/v1/ledger/list?client_id=xxx
func (h *Handler) ListClientLedger(c *gin.Context) {
	clientID := queryInt64(c, "client_id")
	if clientID <= 0 {
		response.ParamError(c, "client_id 参数错误")
		return
	}
	page, pageSize := pagination(c)
	rows, total, err := h.accountService.ListClientLedger(c.Request.Context(), agencyID(c), clientID, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"total": total, "list": rows})
}

package handler

import (
	"travelbill/internal/config"
	"travelbill/internal/infrastructure/database"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, runner *database.TxRunner, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, runner, cfg)

	// API 路由组，全部在旅行社范围内执行
	api := r.Group("/api/v1")
	api.Use(AgencyMiddleware())
	{
		// 发票
		invoice := api.Group("/invoice")
		{
			invoice.POST("/create", h.CreateInvoice)
			invoice.GET("/list", h.ListInvoices)
			invoice.PUT("/:id", h.UpdateInvoice)
			invoice.DELETE("/:id", h.DeleteInvoice)
		}

		// 收款单与核销
		receipt := api.Group("/receipt")
		{
			receipt.POST("/create", h.CreateReceipt)
			receipt.GET("/list", h.ListReceipts)
			receipt.PUT("/:id", h.UpdateReceipt)
			receipt.DELETE("/:id", h.DeleteReceipt)
			receipt.POST("/:id/allocations", h.CreateAllocations)
			receipt.GET("/:id/allocations", h.ListAllocations)
			receipt.DELETE("/:id/allocations/:allocation_id", h.DeleteAllocation)
		}

		// 供应商付款
		payment := api.Group("/vendor-payment")
		{
			payment.POST("/create", h.CreateVendorPayment)
			payment.GET("/list", h.ListVendorPayments)
			payment.PUT("/:id", h.UpdateVendorPayment)
			payment.DELETE("/:id", h.DeleteVendorPayment)
		}

		// 供应商余额
		api.GET("/vendor/:id/balance", h.GetVendorBalance)

		// 资金账户与台账
		account := api.Group("/account")
		{
			account.GET("/list", h.ListAccounts)
			account.GET("/:id/balance", h.GetAccountBalance)
		}
		api.GET("/ledger/list", h.ListClientLedger)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

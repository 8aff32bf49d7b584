package handler

import (
	"travelbill/internal/repository"
	"travelbill/internal/service"
	"travelbill/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 发票接口
// ============================================================

// CreateInvoice 创建发票（同号发票走原地更新）
// POST /api/v1/invoice/create
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), agencyID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, invoice)
}

// UpdateInvoice 按主键编辑发票
// PUT /api/v1/invoice/:id
func (h *Handler) UpdateInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	invoice, err := h.invoiceService.UpdateInvoiceByID(c.Request.Context(), agencyID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, invoice)
}

// DeleteInvoice 删除发票并回冲客户余额
// DELETE /api/v1/invoice/:id
func (h *Handler) DeleteInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.invoiceService.DeleteInvoiceByID(c.Request.Context(), agencyID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "删除成功"})
}

// ListInvoices 发票列表
// GET /api/v1/invoice/list?client_id=&status=
func (h *Handler) ListInvoices(c *gin.Context) {
	page, pageSize := pagination(c)
	filter := repository.InvoiceFilter{
		ClientID: queryInt64(c, "client_id"),
		Status:   c.Query("status"),
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), agencyID(c), filter, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"total": total, "list": invoices})
}

package handler

import (
	"travelbill/internal/service"
	"travelbill/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 收款单接口
// ============================================================

// CreateReceipt 记一笔收款
// POST /api/v1/receipt/create
func (h *Handler) CreateReceipt(c *gin.Context) {
	var req service.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	receipt, err := h.receiptService.CreateMoneyReceipt(c.Request.Context(), agencyID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, receipt)
}

// UpdateReceipt 编辑收款单
// PUT /api/v1/receipt/:id
func (h *Handler) UpdateReceipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	receipt, err := h.receiptService.UpdateMoneyReceipt(c.Request.Context(), agencyID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, receipt)
}

// DeleteReceipt 删除收款单并完整回冲
// DELETE /api/v1/receipt/:id
func (h *Handler) DeleteReceipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.receiptService.DeleteMoneyReceipt(c.Request.Context(), agencyID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "删除成功"})
}

// ListReceipts 收款单列表
// GET /api/v1/receipt/list?client_id=
func (h *Handler) ListReceipts(c *gin.Context) {
	page, pageSize := pagination(c)
	receipts, total, err := h.receiptService.ListMoneyReceipts(c.Request.Context(), agencyID(c), queryInt64(c, "client_id"), page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"total": total, "list": receipts})
}

// CreateAllocationsRequest 事后核销请求
type CreateAllocationsRequest struct {
	Entries []service.AllocationEntry `json:"entries" binding:"required"`
}

// CreateAllocations 把收款单余量事后核销到指定发票
// POST /api/v1/receipt/:id/allocations
func (h *Handler) CreateAllocations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	receipt, err := h.receiptService.CreateReceiptAllocations(c.Request.Context(), agencyID(c), id, req.Entries)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, receipt)
}

// ListAllocations 收款单核销明细
// GET /api/v1/receipt/:id/allocations
func (h *Handler) ListAllocations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocations, err := h.receiptService.ListReceiptAllocations(c.Request.Context(), agencyID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"list": allocations})
}

// DeleteAllocation 撤销单条核销
// DELETE /api/v1/receipt/:id/allocations/:allocation_id
func (h *Handler) DeleteAllocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocationID, ok := pathID(c, "allocation_id")
	if !ok {
		return
	}
	receipt, err := h.receiptService.DeleteReceiptAllocation(c.Request.Context(), agencyID(c), id, allocationID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, receipt)
}

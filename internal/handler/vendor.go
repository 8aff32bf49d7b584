package handler

import (
	"travelbill/internal/service"
	"travelbill/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 供应商付款接口
// ============================================================

// CreateVendorPayment 记一笔供应商付款
// POST /api/v1/vendor-payment/create
func (h *Handler) CreateVendorPayment(c *gin.Context) {
	var req service.CreateVendorPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	payment, err := h.paymentService.CreateVendorPayment(c.Request.Context(), agencyID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, payment)
}

// UpdateVendorPayment 编辑付款单（整单逆向后重放）
// PUT /api/v1/vendor-payment/:id
func (h *Handler) UpdateVendorPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.CreateVendorPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	payment, err := h.paymentService.UpdateVendorPayment(c.Request.Context(), agencyID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, payment)
}

// DeleteVendorPayment 删除付款单并完整回冲
// DELETE /api/v1/vendor-payment/:id
func (h *Handler) DeleteVendorPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.paymentService.DeleteVendorPayment(c.Request.Context(), agencyID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "删除成功"})
}

// ListVendorPayments 付款单列表
// GET /api/v1/vendor-payment/list?vendor_id=
func (h *Handler) ListVendorPayments(c *gin.Context) {
	page, pageSize := pagination(c)
	payments, total, err := h.paymentService.ListVendorPayments(c.Request.Context(), agencyID(c), queryInt64(c, "vendor_id"), page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"total": total, "list": payments})
}

// GetVendorBalance 供应商余额（{type, amount} 形态）
// GET /api/v1/vendor/:id/balance
func (h *Handler) GetVendorBalance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	state, err := h.paymentService.GetVendorBalance(c.Request.Context(), agencyID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, state)
}

package handlers

import (
  "context"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dkoval/shopledger-backend/internal/requestdata"
  "github.com/dkoval/shopledger-backend/internal/services"
  "github.com/dkoval/shopledger-backend/internal/types"
)

type OrderHandler struct {
  ledgerService     services.LedgerService
}

func NewOrderHandler(ledgerService services.LedgerService) *OrderHandler {
  return &OrderHandler{ledgerService: ledgerService}
}

type startTradeRequest struct {
  ProductID     uint    `json:"product_id"`
  Quantity      int64   `json:"quantity"`
  Payment       int64   `json:"payment"`
}

func (oh *OrderHandler) StartTrade(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  var req startTradeRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  order, err := oh.ledgerService.StartTrade(c.Request.Context(), rd.Address, req.ProductID, req.Quantity, req.Payment)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (oh *OrderHandler) Complete(c *gin.Context) {
  oh.transition(c, oh.ledgerService.Complete)
}

func (oh *OrderHandler) ApplyRefund(c *gin.Context) {
  oh.transition(c, oh.ledgerService.ApplyRefund)
}

func (oh *OrderHandler) ApproveRefund(c *gin.Context) {
  oh.transition(c, oh.ledgerService.ApproveRefund)
}

func (oh *OrderHandler) GetMyOrders(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  orders, err := oh.ledgerService.GetMyOrders(c.Request.Context(), rd.Address)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"orders": orders})
}

func (oh *OrderHandler) GetAllOrders(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  orders, err := oh.ledgerService.GetAllOrders(c.Request.Context(), rd.Address)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"orders": orders})
}

func (oh *OrderHandler) GetPendingApproval(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  orders, err := oh.ledgerService.GetPendingApproval(c.Request.Context(), rd.Address)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"orders": orders})
}

func (oh *OrderHandler) transition(c *gin.Context, fn func(ctx context.Context, caller uuid.UUID, orderID uint) (*types.Order, error)) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  id, err := parseID(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  order, err := fn(c.Request.Context(), rd.Address, id)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"order": order})
}

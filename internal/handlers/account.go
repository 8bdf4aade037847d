package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dkoval/shopledger-backend/internal/requestdata"
  "github.com/dkoval/shopledger-backend/internal/services"
)

type AccountHandler struct {
  accountService    services.AccountService
}

func NewAccountHandler(accountService services.AccountService) *AccountHandler {
  return &AccountHandler{accountService: accountService}
}

func (ah *AccountHandler) Get(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  account, err := ah.accountService.Get(c.Request.Context(), rd.Address)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"account": account})
}

func (ah *AccountHandler) Deposit(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  var req struct {
    Amount      int64     `json:"amount"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  account, err := ah.accountService.Deposit(c.Request.Context(), rd.Address, req.Amount)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"account": account})
}

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

type UserHandler struct {
  identityService   services.IdentityService
}

func NewUserHandler(identityService services.IdentityService) *UserHandler {
  return &UserHandler{identityService: identityService}
}

type profileRequest struct {
  Name            string    `json:"name"`
  Email           string    `json:"email"`
  ShippingAddr    string    `json:"shipping_addr"`
}

type registerSellerRequest struct {
  profileRequest
  Deposit         int64     `json:"deposit"`
}

func (uh *UserHandler) RegisterBuyer(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  var req profileRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  user, err := uh.identityService.RegisterBuyer(c.Request.Context(), rd.Address, req.Name, req.Email, req.ShippingAddr)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (uh *UserHandler) RegisterSeller(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  var req registerSellerRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  user, err := uh.identityService.RegisterSeller(c.Request.Context(), rd.Address, req.Name, req.Email, req.ShippingAddr, req.Deposit)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (uh *UserHandler) UpdateBuyer(c *gin.Context) {
  uh.update(c, uh.identityService.UpdateBuyer)
}

func (uh *UserHandler) UpdateSeller(c *gin.Context) {
  uh.update(c, uh.identityService.UpdateSeller)
}

func (uh *UserHandler) GetProfile(c *gin.Context) {
  address, err := uuid.Parse(c.Param("address"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  user, err := uh.identityService.GetUser(c.Request.Context(), address)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) update(c *gin.Context, updateFn func(ctx context.Context, caller uuid.UUID, name, email, shippingAddr string) (*types.User, error)) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  var req profileRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  user, err := updateFn(c.Request.Context(), rd.Address, req.Name, req.Email, req.ShippingAddr)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"user": user})
}

package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dkoval/shopledger-backend/internal/requestdata"
  "github.com/dkoval/shopledger-backend/internal/services"
)

type WishlistHandler struct {
  wishlistService   services.WishlistService
}

func NewWishlistHandler(wishlistService services.WishlistService) *WishlistHandler {
  return &WishlistHandler{wishlistService: wishlistService}
}

func (wh *WishlistHandler) Add(c *gin.Context) {
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
  if err := wh.wishlistService.Add(c.Request.Context(), rd.Address, id); err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"added": id})
}

func (wh *WishlistHandler) Remove(c *gin.Context) {
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
  if err := wh.wishlistService.Remove(c.Request.Context(), rd.Address, id); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"removed": id})
}

func (wh *WishlistHandler) List(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  ids, err := wh.wishlistService.List(c.Request.Context(), rd.Address)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"product_ids": ids})
}

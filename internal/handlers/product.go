package handlers

import (
  "net/http"
  "strconv"
  "github.com/gin-gonic/gin"
  "gorm.io/datatypes"
  "github.com/dkoval/shopledger-backend/internal/requestdata"
  "github.com/dkoval/shopledger-backend/internal/services"
)

type ProductHandler struct {
  catalogService    services.CatalogService
}

func NewProductHandler(catalogService services.CatalogService) *ProductHandler {
  return &ProductHandler{catalogService: catalogService}
}

type productRequest struct {
  Name          string          `json:"name"`
  Price         int64           `json:"price"`
  Stock         int64           `json:"stock"`
  Attributes    datatypes.JSON  `json:"attributes,omitempty"`
}

func (ph *ProductHandler) Add(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  var req productRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  product, err := ph.catalogService.AddProduct(c.Request.Context(), rd.Address, req.Name, req.Price, req.Stock, req.Attributes)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (ph *ProductHandler) Update(c *gin.Context) {
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
  var req productRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  product, err := ph.catalogService.UpdateProduct(c.Request.Context(), rd.Address, id, req.Name, req.Price, req.Stock)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"product": product})
}

func (ph *ProductHandler) ListAvailable(c *gin.Context) {
  products, err := ph.catalogService.ListAvailable(c.Request.Context())
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"products": products})
}

func (ph *ProductHandler) GetByID(c *gin.Context) {
  id, err := parseID(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  product, err := ph.catalogService.GetByID(c.Request.Context(), id)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"product": product})
}

func parseID(raw string) (uint, error) {
  id, err := strconv.ParseUint(raw, 10, 64)
  if err != nil {
    return 0, err
  }
  return uint(id), nil
}

package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dkoval/shopledger-backend/internal/requestdata"
  "github.com/dkoval/shopledger-backend/internal/services"
)

type AuthHandler struct {
  authService   services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
  Email       string    `json:"email"`
  Password    string    `json:"password"`
}

func (ah *AuthHandler) Signup(c *gin.Context) {
  var req credentialsRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  user, access, refresh, err := ah.authService.Signup(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{
    "user":          user,
    "access_token":  access,
    "refresh_token": refresh,
  })
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req credentialsRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  access, refresh, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "access_token":  access,
    "refresh_token": refresh,
  })
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  var req struct {
    RefreshToken    string    `json:"refresh_token"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
    return
  }
  access, refresh, err := ah.authService.Refresh(c.Request.Context(), req.RefreshToken)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "access_token":  access,
    "refresh_token": refresh,
  })
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
    return
  }
  if err := ah.authService.Logout(c.Request.Context(), rd.Address); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"logged_out": true})
}

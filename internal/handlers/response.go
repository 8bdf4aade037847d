package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dkoval/shopledger-backend/internal/apierr"
)

type APIError struct {
  Message     string	`json:"message"`
  Code	      string	`json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error	      APIError	`json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondAppError maps a service error onto the wire. Typed apierr errors
// keep their status and code; anything else is an internal error.
func RespondAppError(c *gin.Context, err error) {
  var ae *apierr.Error
  if errors.As(err, &ae) {
    RespondError(c, ae.Status, ae.Code, ae)
    return
  }
  RespondError(c, http.StatusInternalServerError, "INTERNAL", err)
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errBody is the error envelope: {"error": "..."}. Success responses are sent
// as-is so the phone and signage clients consume payloads without unwrapping.
type errBody struct {
	Error string `json:"error"`
}

// OK sends a 200 JSON response with the payload as the body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with the payload as the body.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest sends 400 with a human-readable validation message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errBody{Error: msg})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, errBody{Error: msg})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, errBody{Error: msg})
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, errBody{Error: msg})
}

// ServiceUnavailable sends 503. Used when the datastore is unreachable while
// in-memory features keep serving.
func ServiceUnavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, errBody{Error: msg})
}

// Internal sends 500 with a generic message; detail stays in the server log.
func Internal(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, errBody{Error: msg})
}

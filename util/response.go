package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope returned by every handler. Status mirrors the
// HTTP outcome so frontend code can branch on a single boolean. Token is only
// populated by login.
type APIResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg   string
	Token string
	Data  interface{}
}

// CallErrorNotFound is for returning an API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusNotFound, APIResponse{
		Status:  false,
		Error:   params.Err.Error(),
		Message: params.Msg,
	})
}

// CallUserError is for returning an error caused by user input
func CallUserError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusBadRequest, APIResponse{
		Status:  false,
		Error:   params.Err.Error(),
		Message: params.Msg,
	})
}

// CallConflict is for returning a duplicate unique-key error
func CallConflict(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusConflict, APIResponse{
		Status:  false,
		Error:   params.Err.Error(),
		Message: params.Msg,
	})
}

// CallServerError is for returning an API response server error. The detail
// lands in the error field; Msg stays generic so internals do not leak.
func CallServerError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusInternalServerError, APIResponse{
		Status:  false,
		Error:   params.Err.Error(),
		Message: params.Msg,
	})
}

// CallSuccessOK is for returning an API response with status code 200
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  true,
		Message: params.Msg,
		Token:   params.Token,
		Data:    params.Data,
	})
}

// CallUserNotAuthorized is for returning an API response with status code 401
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusUnauthorized, APIResponse{
		Status:  false,
		Error:   params.Err.Error(),
		Message: params.Msg,
	})
}

// NormalizeName normalizes a name by trimming leading/trailing whitespace
// and collapsing multiple internal spaces into single spaces.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Join(strings.Fields(name), " ")
}

package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (er *ErrorResponse) Error() string {
	return fmt.Sprintf("%d - %s", er.Code, er.Message)
}

// Abort stops the chain and writes code with an ErrorResponse body.
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, &ErrorResponse{
		Code:    code,
		Message: message,
	})
}

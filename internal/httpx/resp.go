package httpx

import (
	"net/http"

	"watchtower/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const loggerKey = "watchtower.logger"

// ErrorBody is the body of every error response
type ErrorBody struct {
	Detail interface{} `json:"detail"`
}

// SetLogger stores a request scoped logger on the context
func SetLogger(c *gin.Context, entry *logrus.Entry) {
	c.Set(loggerKey, entry)
}

// Logger returns the request scoped logger, or the standard logger
func Logger(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// OK sends data with status 200
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends data with status 201
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OKMsg sends {"message": message} with status 200
func OKMsg(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.MessageDTO{Message: message})
}

// FailErr sends an error response from an AppError.
// If AppError.Err is not nil, it will be logged but not returned to client
func FailErr(c *gin.Context, err *AppError) {
	if err.Err != nil {
		Logger(c).WithError(err.Err).WithField("code", err.Code).Error(err.Message)
	}

	detail := err.Detail
	if detail == nil {
		detail = err.Message
	}

	c.AbortWithStatusJSON(err.HTTPStatus, ErrorBody{Detail: detail})
}

package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

// Notification is a transient message for the operator, mirroring a toast.
type Notification struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Notification kinds.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data          interface{}            `json:"data,omitempty"`
	Error         *appErrors.Error       `json:"error,omitempty"`
	Pagination    *models.Pagination     `json:"pagination,omitempty"`
	Notifications []Notification         `json:"notifications,omitempty"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// WithNotifications sends data together with the notifications an operation
// raised. Notifications are omitted when empty.
func WithNotifications(c *gin.Context, status int, data interface{}, notes []Notification) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Notifications: notes})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// ErrorWithNotifications sends an error envelope that still carries the
// notifications raised before the failure and, optionally, the state the
// caller should render next to it.
func ErrorWithNotifications(c *gin.Context, err error, data interface{}, notes []Notification) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Data: data, Error: appErr, Notifications: notes})
}

// Attachment streams a generated file as a download.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

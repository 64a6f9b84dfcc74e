package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/talentlink/talentlink/pkg/errors"
)

// JSON writes a success payload as-is. Resource endpoints return the
// serialized entity (or a list of them) with no envelope.
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Count writes the bulk-operation payload {"message": ..., "count": n}.
func Count(c *gin.Context, message string, count int64) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"count":   count,
	})
}

// Message writes a single-message acknowledgement.
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}

// Error writes an error response derived from an AppError. Field-level
// validation failures render as {"<field>": ["reason", ...]}; everything
// else renders as {"error": "<message>"}.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if len(appErr.Fields) > 0 {
		c.JSON(status, appErr.Fields)
		return
	}

	c.JSON(status, gin.H{"error": appErr.Message})
}

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-admin/utils"
)

// Recovery turns panics into the generic 500 response.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"panic", fmt.Sprint(recovered),
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
		)
		utils.JSONMessage(c, http.StatusInternalServerError, utils.MsgSomethingWrong)
		c.Abort()
	})
}

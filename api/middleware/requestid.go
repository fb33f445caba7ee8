package middleware

import (
	"github.com/cruxlens/cruxlens/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// headerRequestID is the header carrying the request correlation ID.
const headerRequestID = "X-Request-ID"

// RequestID assigns a unique request ID to each request. If the incoming
// request already carries an X-Request-ID header, that value is reused;
// otherwise a new UUID v4 is generated. The ID is stored on the request
// context and echoed in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}

		c.Request = c.Request.WithContext(requestid.NewContext(c.Request.Context(), id))
		c.Header(headerRequestID, id)
		c.Next()
	}
}

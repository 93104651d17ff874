package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// operatorIDKey is the key used to store the operator reference in the Gin context.
const operatorIDKey = contextKey("operatorID")

// OperatorIDHeader carries the opaque operator reference attached by the
// identity collaborator in front of this service. The ledger never inspects
// its internal shape; it is stamped onto created instruments and payments.
const OperatorIDHeader = "X-Operator-ID"

// IdentityMiddleware extracts the operator reference from the request header
// and rejects requests without one.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := c.GetHeader(OperatorIDHeader)
		if operatorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + OperatorIDHeader + " header"})
			return
		}
		c.Set(string(operatorIDKey), operatorID)
		c.Next()
	}
}

// GetOperatorIDFromContext retrieves the operator reference from the Gin
// context. It returns the reference and a boolean indicating if it was found.
func GetOperatorIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(operatorIDKey))
	if !exists {
		return "", false
	}

	operatorID, ok := val.(string)
	if !ok {
		return "", false
	}

	return operatorID, true
}

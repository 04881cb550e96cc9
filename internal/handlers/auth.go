package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/exam-session-service/internal/config"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

var errMissingSubject = errors.New("token carries no user id")

// TokenVerifier resolves a bearer token to the caller's user id
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// CasdoorVerifier checks tokens against the Casdoor application certificate
type CasdoorVerifier struct{}

func NewCasdoorVerifier(cfg config.CasdoorConfig) *CasdoorVerifier {
	casdoorsdk.InitConfig(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.OrganizationName, cfg.ApplicationName)
	return &CasdoorVerifier{}
}

func (CasdoorVerifier) Verify(token string) (string, error) {
	claims, err := casdoorsdk.ParseJwtToken(token)
	if err != nil {
		return "", err
	}
	switch {
	case claims.User.Id != "":
		return claims.User.Id, nil
	case claims.User.Name != "":
		return claims.User.Owner + "/" + claims.User.Name, nil
	}
	return "", errMissingSubject
}

// AuthMiddleware requires a bearer token and stores the caller id under user_id
func AuthMiddleware(verifier TokenVerifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			return
		}

		userID, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			logger.Warn("Rejected bearer token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUser returns the authenticated caller or writes 401
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return "", false
	}
	return userID, true
}

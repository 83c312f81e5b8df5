package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/saverio87/ng-classroom-manager-backend/internal/auth"
	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/service"
)

const (
	headerAccessToken  = "x-access-token"
	headerRefreshToken = "x-refresh-token"
	headerUserID       = "_id"

	ctxUserID       = "userID"
	ctxUser         = "userObject"
	ctxRefreshToken = "refreshToken"
)

// Authenticator produces the two request guards. Both resolve a user id;
// only the session guard touches the database.
type Authenticator struct {
	issuer *auth.Issuer
	users  service.UserService
	logger *logrus.Logger
}

func NewAuthenticator(issuer *auth.Issuer, users service.UserService, logger *logrus.Logger) *Authenticator {
	return &Authenticator{
		issuer: issuer,
		users:  users,
		logger: logger,
	}
}

// RequireAccessToken validates the x-access-token header statelessly and
// attaches the resolved user id to the request.
func (a *Authenticator) RequireAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(headerAccessToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}

		userID, err := a.issuer.VerifyAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// RequireSession validates the x-refresh-token/_id pair against persisted
// sessions: one store read, no writes. Downstream handlers additionally get
// the user record and the presented refresh token.
func (a *Authenticator) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken := c.GetHeader(headerRefreshToken)
		userID := c.GetHeader(headerUserID)
		if refreshToken == "" || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token or user id"})
			return
		}

		user, err := a.users.FindUserBySessionToken(c.Request.Context(), userID, refreshToken)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "user not found; make sure that the refresh token and user id are correct",
				})
			} else {
				a.logger.Errorf("session lookup: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}

		now := time.Now()
		sessionValid := false
		for _, s := range user.Sessions {
			if s.Token == refreshToken && auth.SessionValid(s, now) {
				sessionValid = true
				break
			}
		}
		if !sessionValid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrSessionInvalid.Error()})
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUser, user)
		c.Set(ctxRefreshToken, refreshToken)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(ctxUser); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

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

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	students   service.StudentService
	classrooms service.ClassroomService
	exports    service.ExportService
	issuer     *auth.Issuer
	authn      *Authenticator
	logger     *logrus.Logger
}

// NewHandler builds the route handler; exports may be nil when object
// storage is not configured.
func NewHandler(
	users service.UserService,
	students service.StudentService,
	classrooms service.ClassroomService,
	exports service.ExportService,
	issuer *auth.Issuer,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:      users,
		students:   students,
		classrooms: classrooms,
		exports:    exports,
		issuer:     issuer,
		authn:      NewAuthenticator(issuer, users, logger),
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.POST("/users", h.signup)
	router.POST("/users/login", h.login)
	router.GET("/users/me/access-token", h.authn.RequireSession(), h.newAccessToken)
	router.PATCH("/users/me/password", h.authn.RequireAccessToken(), h.updatePassword)

	students := router.Group("/students", h.authn.RequireAccessToken())
	{
		students.GET("", h.listStudents)
		students.GET("/:id", h.getStudent)
		students.POST("/add", h.createStudent)
		students.POST("/add/many", h.createStudents)
		students.PATCH("/:id", h.updateStudent)
		students.DELETE("/:id", h.deleteStudent)
		students.PATCH("/:id/contact-details/:item_id", h.setContactDetail)
		students.DELETE("/:id/contact-details/:item_id", h.clearContactDetail)
		students.PATCH("/:id/absences", h.addAbsence)
		students.DELETE("/:id/absences/:item_id", h.removeAbsence)
		students.PATCH("/:id/feedback", h.addFeedback)
		students.DELETE("/:id/feedback/:item_id", h.removeFeedback)
	}

	classrooms := router.Group("/classrooms", h.authn.RequireAccessToken())
	{
		classrooms.GET("", h.listClassrooms)
		classrooms.POST("", h.createClassroom)
		classrooms.DELETE("/:id", h.deleteClassroom)
		classrooms.PATCH("/:id/groups", h.replaceGroups)
		classrooms.PATCH("/:id/notes", h.addNote)
		classrooms.DELETE("/:id/notes/:item_id", h.removeNote)
		classrooms.PATCH("/:id/activities", h.addActivity)
		classrooms.DELETE("/:id/activities/:item_id", h.removeActivity)
	}

	if h.exports != nil {
		exports := router.Group("/exports", h.authn.RequireAccessToken())
		{
			exports.POST("", h.createExport)
			exports.GET("", h.listExports)
			exports.GET("/url", h.exportURL)
			exports.DELETE("", h.deleteExports)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

// The _id and token headers are part of the client contract; they must be
// allowed in and readable from browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, HEAD, OPTIONS, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, x-access-token, x-refresh-token, _id")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "x-access-token, x-refresh-token")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondWithTokens(c, user)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondWithTokens(c, user)
}

// respondWithTokens completes signup/login: a refresh session is persisted,
// an access token is signed, and both travel back as headers. Any failure
// along the way fails the whole operation.
func (h *Handler) respondWithTokens(c *gin.Context, user *domain.User) {
	refreshToken, err := h.users.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	accessToken, _, err := h.issuer.IssueAccessToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header(headerRefreshToken, refreshToken)
	c.Header(headerAccessToken, accessToken)
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) newAccessToken(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	accessToken, _, err := h.issuer.IssueAccessToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header(headerAccessToken, accessToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *Handler) updatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// respondError maps domain sentinels onto the status taxonomy: validation
// 400, authentication 401, missing resources 404, everything else 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrNoteInvalid),
		errors.Is(err, domain.ErrActivityInvalid),
		errors.Is(err, domain.ErrGroupInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrSessionInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrStudentNotFound),
		errors.Is(err, domain.ErrClassroomNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// UserResponse is the external shape of a user record; the password hash and
// the session list never leave the server.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

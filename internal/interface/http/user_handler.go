package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-ddd-identity-service/internal/application"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity-service/pkg/response"
	"github.com/oksasatya/go-ddd-identity-service/pkg/validation"
)

// Searcher finds users by free text.
type Searcher interface {
	Search(ctx context.Context, q string, size int) ([]userapp.UserView, error)
}

type UserHandler struct {
	Svc    *userapp.Service
	Search Searcher // optional
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, search Searcher, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Search: search, Logger: logger}
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required,username"`
	Email       string `json:"email" binding:"required,email,max=100"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"full_name" binding:"required,fullname"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,phone"`
}

type updateUserRequest struct {
	FullName    string `json:"full_name" binding:"required,fullname"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,phone"`
}

type authenticateRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// fail maps service errors to HTTP statuses. Unknown errors are logged and
// reported as 500 without detail.
func (h *UserHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, entity.ErrDuplicateEmail):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, entity.ErrDuplicateUsername):
		response.Error[any](c, http.StatusConflict, "username already taken", nil)
	case errors.Is(err, entity.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, entity.ErrInvalidArgument):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", err.Error())
	default:
		count(metricInternalErrors)
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"op":         op,
			"request_id": c.GetString("request_id"),
		}).Error("user request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", map[string]any{"count": len(users)})
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	if u == nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.Svc.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, "get_by_email", err)
		return
	}
	if u == nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// SearchUsers queries the search index; the store is not consulted.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 50 {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"size": "must be a number between 1 and 50"})
		return
	}

	users := []userapp.UserView{}
	if h.Search != nil {
		found, err := h.Search.Search(c.Request.Context(), q, size)
		if err != nil {
			h.fail(c, "search", err)
			return
		}
		users = found
	}
	response.Success(c, http.StatusOK, users, "search results", map[string]any{"count": len(users)})
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), userapp.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	count(metricUsersCreated)
	c.Header("Location", "/api/users/"+u.ID)
	response.Success(c, http.StatusCreated, u, "user created", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), userapp.UpdateUserInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	ok, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "delete", err)
		return
	}
	if !ok {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	count(metricUsersDeleted)
	response.NoContent(c)
}

func (h *UserHandler) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ok, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "authenticate", err)
		return
	}
	if !ok {
		count(metricLoginFailed)
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	count(metricLoginSucceeded)
	response.Success(c, http.StatusOK, gin.H{"authenticated": true}, "authenticated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ok, err := h.Svc.ChangePassword(c.Request.Context(), c.Param("id"), userapp.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.fail(c, "change_password", err)
		return
	}
	if !ok {
		response.Error[any](c, http.StatusBadRequest, "current password is incorrect", nil)
		return
	}
	count(metricPasswordChanged)
	response.Success(c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

func (h *UserHandler) Activate(c *gin.Context) {
	h.transition(c, "activate", h.Svc.Activate)
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	h.transition(c, "deactivate", h.Svc.Deactivate)
}

func (h *UserHandler) Suspend(c *gin.Context) {
	h.transition(c, "suspend", h.Svc.Suspend)
}

func (h *UserHandler) transition(c *gin.Context, op string, apply func(context.Context, string) (*userapp.UserView, error)) {
	u, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, op, err)
		return
	}
	response.Success(c, http.StatusOK, u, "status updated", nil)
}

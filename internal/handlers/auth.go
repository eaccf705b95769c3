package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/sergiovidalh/recluta/internal/auth"
	"github.com/sergiovidalh/recluta/internal/middleware"
	"github.com/sergiovidalh/recluta/internal/services"
	appErrors "github.com/sergiovidalh/recluta/pkg/errors"
	"github.com/sergiovidalh/recluta/pkg/response"
)

// AuthHandler issues access tokens against local credentials.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService) (*AuthHandler, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{users: users, jwt: jwt}, nil
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns a signed access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), payload.Username, payload.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"user":         user,
	})
}

// Me returns the profile behind the presented token.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

type registerRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=64"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	FirstName   string  `json:"first_name" validate:"max=128"`
	LastName    string  `json:"last_name" validate:"max=128"`
	ClientOrgID *string `json:"client_org_id"`
}

// Register creates a new local account.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload registerRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Create(requestContext(c), services.CreateUserInput{
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		ClientOrgID: payload.ClientOrgID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/bind"
	"github.com/shashiranjanraj/emart/pkg/response"
)

type AuthController struct {
	users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Register creates a new account in one of the three roles.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.Register(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Created(w, user)
}

// Login exchanges credentials for a token pair.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.users.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, result)
}

// Logout revokes the presented bearer token for its remaining lifetime.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		response.Unauthorized(w)
		return
	}
	if err := c.users.Logout(token); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "logged out"})
}

// ValidateToken reports whether a token is still valid and who it belongs to.
func (c *AuthController) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	claims, err := c.users.ValidateToken(in.Token)
	if err != nil {
		response.Success(w, map[string]interface{}{"valid": false})
		return
	}
	response.Success(w, map[string]interface{}{
		"valid":    true,
		"userId":   claims.UserID,
		"username": claims.Username,
		"role":     claims.Role,
	})
}

// Me returns the authenticated user's profile.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	id, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	user, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, user)
}

// ChangePassword verifies the old password before setting the new one.
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=6"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := authedUserID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := c.users.ChangePassword(r.Context(), id, in.OldPassword, in.NewPassword); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "password changed"})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

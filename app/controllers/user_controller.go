package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/bind"
	"github.com/shashiranjanraj/emart/pkg/response"
)

// UserController is the admin-facing account management surface.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// List returns accounts, optionally narrowed by role, enabled flag or a
// free-text search over name fields.
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		users interface{}
		err   error
	)
	switch {
	case q.Get("role") != "":
		users, err = c.users.ByRole(r.Context(), q.Get("role"))
	case q.Get("enabled") == "true":
		users, err = c.users.Enabled(r.Context())
	case q.Get("search") != "":
		users, err = c.users.Search(r.Context(), q.Get("search"))
	default:
		users, err = c.users.All(r.Context())
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, users)
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
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

func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var in services.UpdateInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.Update(r.Context(), id, in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, user)
}

// Disable soft-deletes an account. The record stays for audit history.
func (c *UserController) Disable(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := c.users.Disable(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "user disabled"})
}

func (c *UserController) Enable(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := c.users.Enable(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "user enabled"})
}

// Stats returns total and per-role account counts.
func (c *UserController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.users.Stats(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	response.Success(w, stats)
}

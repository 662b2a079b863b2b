package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/repositories"
	"github.com/shashiranjanraj/emart/pkg/auth"
	"github.com/shashiranjanraj/emart/pkg/cache"
)

type userStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *models.User) error
	All(ctx context.Context) ([]models.User, error)
	ByRole(ctx context.Context, role models.Role) ([]models.User, error)
	Enabled(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// UserService handles registration, authentication and account management.
type UserService struct {
	users    userStore
	notifier Notifier
}

func NewUserService(users userStore, notifier Notifier) *UserService {
	return &UserService{users: users, notifier: notifier}
}

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Role      string `json:"role" validate:"required"`
}

// Register creates a new account with a hashed password and emails a welcome.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return models.User{}, errBadRequest("invalid role: %s", in.Role)
	}

	if taken, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, errConflict("username already exists")
	}
	if taken, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, errConflict("email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   in.Address,
		Role:      role,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.notifier.UserRegistered(user)
	return user, nil
}

// LoginResult bundles the issued tokens with the authenticated account.
type LoginResult struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// Login verifies credentials and issues a signed JWT pair.
func (s *UserService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return LoginResult{}, errBadRequest("invalid username or password")
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !user.Enabled {
		return LoginResult{}, errForbidden("account is disabled")
	}
	if !auth.CheckPassword(user.Password, password) {
		return LoginResult{}, errBadRequest("invalid username or password")
	}

	id := user.ID.Hex()
	token, err := auth.GenerateToken(id, user.Username, string(user.Role))
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := auth.GenerateRefreshToken(id, user.Username, string(user.Role))
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, RefreshToken: refresh, User: user}, nil
}

// ValidateToken checks a JWT and returns its claims, rejecting revoked tokens.
func (s *UserService) ValidateToken(token string) (*auth.Claims, error) {
	if cache.TokenRevoked(token) {
		return nil, errForbidden("token has been revoked")
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		return nil, errForbidden("invalid or expired token")
	}
	return claims, nil
}

// Logout revokes a token for the remainder of its lifetime.
func (s *UserService) Logout(token string) error {
	claims, err := auth.ValidateToken(token)
	if err != nil {
		return errForbidden("invalid or expired token")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return cache.RevokeToken(token, ttl)
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, errNotFound("user not found")
	}
	return user, err
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, errNotFound("user not found")
	}
	return user, err
}

// UpdateInput carries the profile fields an update may change.
type UpdateInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// Update rewrites the mutable profile fields. Username, role and password are
// never touched here.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email
	user.Phone = in.Phone
	user.Address = in.Address
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ChangePassword rotates the password after verifying the old one.
func (s *UserService) ChangePassword(ctx context.Context, id primitive.ObjectID, oldPassword, newPassword string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, oldPassword) {
		return errBadRequest("old password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, &user)
}

// Disable soft-deletes an account. Disabled users cannot log in.
func (s *UserService) Disable(ctx context.Context, id primitive.ObjectID) error {
	return s.setEnabled(ctx, id, false)
}

// Enable reactivates a disabled account.
func (s *UserService) Enable(ctx context.Context, id primitive.ObjectID) error {
	return s.setEnabled(ctx, id, true)
}

func (s *UserService) setEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Enabled = enabled
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, &user)
}

func (s *UserService) All(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

func (s *UserService) ByRole(ctx context.Context, role string) ([]models.User, error) {
	r, ok := models.ParseRole(role)
	if !ok {
		return nil, errBadRequest("invalid role: %s", role)
	}
	return s.users.ByRole(ctx, r)
}

func (s *UserService) Enabled(ctx context.Context) ([]models.User, error) {
	return s.users.Enabled(ctx)
}

func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	return s.users.Search(ctx, query)
}

// Stats reports account counts per role for the admin dashboard.
func (s *UserService) Stats(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	out["total"] = total

	for _, role := range []models.Role{models.RoleAdmin, models.RoleSupplier, models.RoleCustomer} {
		n, err := s.users.CountByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		out[string(role)] = n
	}
	return out, nil
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/emart/app/models"
)

func newUserFixture(t *testing.T) (*UserService, *memUsers) {
	t.Helper()
	users := newMemUsers()
	return NewUserService(users, NopNotifier{}), users
}

func registerInput(username, email, role string) RegisterInput {
	return RegisterInput{
		Username:  username,
		Email:     email,
		Password:  "s3cret99",
		FirstName: "Pat",
		LastName:  "Example",
		Role:      role,
	}
}

func TestRegisterHashesPasswordAndEnables(t *testing.T) {
	svc, _ := newUserFixture(t)

	user, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "customer"))
	require.NoError(t, err)

	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.True(t, user.Enabled)
	assert.NotEqual(t, "s3cret99", user.Password)
	assert.NotEmpty(t, user.Password)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newUserFixture(t)

	_, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "CUSTOMER"))
	require.NoError(t, err)

	var ce *ClientError
	_, err = svc.Register(context.Background(), registerInput("pat", "other@example.com", "CUSTOMER"))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)
	assert.Equal(t, "username already exists", ce.Message)

	_, err = svc.Register(context.Background(), registerInput("pat2", "pat@example.com", "CUSTOMER"))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)
	assert.Equal(t, "email already exists", ce.Message)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserFixture(t)

	var ce *ClientError
	_, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "WIZARD"))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _ := newUserFixture(t)

	user, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "SUPPLIER"))
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "pat", "s3cret99")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "SUPPLIER", claims.Role)
}

func TestLoginFailuresAreIndistinct(t *testing.T) {
	svc, _ := newUserFixture(t)

	_, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "CUSTOMER"))
	require.NoError(t, err)

	var ce *ClientError

	// Wrong password and unknown username read identically to a caller.
	_, err = svc.Login(context.Background(), "pat", "wrong")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)
	assert.Equal(t, "invalid username or password", ce.Message)

	_, err = svc.Login(context.Background(), "nobody", "s3cret99")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)
	assert.Equal(t, "invalid username or password", ce.Message)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, _ := newUserFixture(t)

	user, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "CUSTOMER"))
	require.NoError(t, err)
	require.NoError(t, svc.Disable(context.Background(), user.ID))

	var ce *ClientError
	_, err = svc.Login(context.Background(), "pat", "s3cret99")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 403, ce.Status)

	require.NoError(t, svc.Enable(context.Background(), user.ID))
	_, err = svc.Login(context.Background(), "pat", "s3cret99")
	require.NoError(t, err)
}

func TestChangePasswordVerifiesOld(t *testing.T) {
	svc, _ := newUserFixture(t)

	user, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "CUSTOMER"))
	require.NoError(t, err)

	var ce *ClientError
	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "newpass1")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "s3cret99", "newpass1"))

	_, err = svc.Login(context.Background(), "pat", "s3cret99")
	require.Error(t, err)
	_, err = svc.Login(context.Background(), "pat", "newpass1")
	require.NoError(t, err)
}

func TestUpdateLeavesCredentialsAlone(t *testing.T) {
	svc, users := newUserFixture(t)

	user, err := svc.Register(context.Background(), registerInput("pat", "pat@example.com", "CUSTOMER"))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, UpdateInput{
		FirstName: "Patricia",
		LastName:  "Example",
		Email:     "patricia@example.com",
		Phone:     "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", updated.FirstName)
	assert.Equal(t, "patricia@example.com", updated.Email)

	stored, _ := users.FindByID(context.Background(), user.ID)
	assert.Equal(t, user.Username, stored.Username)
	assert.Equal(t, user.Password, stored.Password)
	assert.Equal(t, user.Role, stored.Role)
}

func TestUserStats(t *testing.T) {
	svc, users := newUserFixture(t)
	users.add(models.User{Username: "a", Role: models.RoleAdmin})
	users.add(models.User{Username: "s1", Role: models.RoleSupplier})
	users.add(models.User{Username: "c1", Role: models.RoleCustomer})
	users.add(models.User{Username: "c2", Role: models.RoleCustomer})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats["total"])
	assert.Equal(t, int64(1), stats["ADMIN"])
	assert.Equal(t, int64(1), stats["SUPPLIER"])
	assert.Equal(t, int64(2), stats["CUSTOMER"])
}

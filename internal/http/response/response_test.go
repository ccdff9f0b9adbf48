package response

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

func TestOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := OKWithData("done", data)

	assert.True(t, resp.Success)
	assert.Equal(t, "done", resp.Message)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.False(t, resp.Success)
	assert.Equal(t, "something went wrong", resp.Message)
	assert.Nil(t, resp.Data)
	assert.Nil(t, resp.User)
	assert.Nil(t, resp.SubscriptionActive)
}

func TestNewUserProfile(t *testing.T) {
	expiry := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: "$2a$10$secret",
		Status:       models.StatusActive,
		Expiry:       &expiry,
	}

	p := NewUserProfile(user)

	require.NotNil(t, p)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, models.StatusActive, p.Status)
	require.NotNil(t, p.Expiry)
	assert.Equal(t, "2025-12-31", *p.Expiry)
}

func TestNewUserProfile_LifetimeAndNil(t *testing.T) {
	p := NewUserProfile(&models.User{ID: 1, Username: "bob", Status: models.StatusActive})
	require.NotNil(t, p)
	assert.Nil(t, p.Expiry)

	assert.Nil(t, NewUserProfile(nil))
}

func TestDecision(t *testing.T) {
	user := &models.User{ID: 3, Username: "carol", Status: models.StatusInactive}

	resp := Decision(false, "subscription inactive or expired", user, false)

	assert.False(t, resp.Success)
	assert.Equal(t, "subscription inactive or expired", resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, "carol", resp.User.Username)
	require.NotNil(t, resp.SubscriptionActive)
	assert.False(t, *resp.SubscriptionActive)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Username string `validate:"required,min=3"`
		Plan     string `validate:"oneof=lifetime 1m 6m 12m"`
	}

	v := validator.New()
	ts := TestStruct{
		Username: "",
		Plan:     "forever",
	}

	err := v.Struct(ts)
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "field Username is a required field")
	assert.Contains(t, resp.Message, "field Plan has an unsupported value")
}

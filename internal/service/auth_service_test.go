package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}, nil)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := testAuthService()

	hash, err := svc.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, svc.CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestStaffTokenRoundTrip(t *testing.T) {
	svc := testAuthService()
	officerID := uuid.New()

	token, err := svc.GenerateStaffToken(officerID, model.RoleOfficer)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, officerID.String(), claims.UserID)
	assert.Equal(t, model.RoleOfficer, claims.Role)
	assert.True(t, claims.HasPermission(model.PermissionStagesEvaluate))
	assert.False(t, claims.HasPermission(model.PermissionStagesAssignOfficer))
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := testAuthService()
	token, err := svc.GenerateStaffToken(uuid.New(), model.RoleManager)
	require.NoError(t, err)

	other := NewAuthService(&config.Config{JWTSecret: "different", JWTExpiry: time.Hour}, nil)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: -time.Minute,
	}, nil)
	token, err := svc.GenerateStaffToken(uuid.New(), model.RoleOfficer)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := testAuthService()
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

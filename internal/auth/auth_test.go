package auth

import (
	"testing"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWT() *JWTService {
	return NewJWTService(config.AuthConfig{JWTSecret: "test-secret", Issuer: "pharmacare", TokenTTL: time.Hour})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestJWT()
	account := &domain.Account{ID: "a1", Role: domain.RolePharmacist}

	token, err := svc.Issue(account)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := svc.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.AccountID)
	assert.Equal(t, domain.RolePharmacist, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateExpired(t *testing.T) {
	svc := newTestJWT()
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(&domain.Account{ID: "a1", Role: domain.RoleCustomer})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := newTestJWT().Issue(&domain.Account{ID: "a1", Role: domain.RoleCustomer})
	require.NoError(t, err)

	other := NewJWTService(config.AuthConfig{JWTSecret: "other"})
	_, err = other.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, h.Matches(hash, "s3cret-pass"))
	assert.False(t, h.Matches(hash, "wrong"))
	assert.False(t, h.Matches("", "s3cret-pass"))
}

func TestNewHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Len(t, otp, OTPLength)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

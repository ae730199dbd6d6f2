package session

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestIdentity_Customer(t *testing.T) {
	p := NewProvider(testSecret)

	credential := signToken(t, jwt.MapClaims{
		"user_id":  "user123",
		"name":     "Asha",
		"email":    "asha@example.com",
		"userType": "customer",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	ident, err := p.Identity(credential)
	require.NoError(t, err)
	assert.Equal(t, "user123", ident.UserID)
	assert.Equal(t, "Asha", ident.Name)
	assert.Equal(t, "asha@example.com", ident.Email)
	assert.Equal(t, RoleCustomer, ident.Role)
	assert.True(t, ident.Authenticated())
	assert.False(t, ident.IsAdmin())
}

func TestIdentity_Admin(t *testing.T) {
	p := NewProvider(testSecret)

	credential := signToken(t, jwt.MapClaims{
		"user_id":  "admin1",
		"userType": "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	ident, err := p.Identity(credential)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, ident.Role)
	assert.True(t, ident.IsAdmin())
}

func TestIdentity_SubjectClaimFallback(t *testing.T) {
	p := NewProvider(testSecret)

	credential := signToken(t, jwt.MapClaims{
		"sub": "user456",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	ident, err := p.Identity(credential)
	require.NoError(t, err)
	assert.Equal(t, "user456", ident.UserID)
	assert.Equal(t, RoleCustomer, ident.Role)
}

func TestIdentity_EmptyCredential(t *testing.T) {
	p := NewProvider(testSecret)

	ident, err := p.Identity("")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, Anonymous, ident)
	assert.False(t, ident.Authenticated())
}

func TestIdentity_WrongSecret(t *testing.T) {
	p := NewProvider(testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	credential, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	ident, err := p.Identity(credential)
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, Anonymous, ident)
}

func TestIdentity_Expired(t *testing.T) {
	p := NewProvider(testSecret)

	credential := signToken(t, jwt.MapClaims{
		"user_id": "user123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	ident, err := p.Identity(credential)
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, Anonymous, ident)
}

func TestIdentity_MissingUserID(t *testing.T) {
	p := NewProvider(testSecret)

	credential := signToken(t, jwt.MapClaims{
		"email": "nobody@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	ident, err := p.Identity(credential)
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, Anonymous, ident)
}

func TestLogout_RevokesCredential(t *testing.T) {
	p := NewProvider(testSecret)

	credential := signToken(t, jwt.MapClaims{
		"user_id": "user123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	ident, err := p.Identity(credential)
	require.NoError(t, err)
	require.True(t, ident.Authenticated())

	p.Logout(credential)

	ident, err = p.Identity(credential)
	assert.ErrorIs(t, err, ErrCredentialRevoked)
	assert.Equal(t, Anonymous, ident)
}

func TestLogout_OtherCredentialsUnaffected(t *testing.T) {
	p := NewProvider(testSecret)

	first := signToken(t, jwt.MapClaims{
		"user_id": "user123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	second := signToken(t, jwt.MapClaims{
		"user_id": "user456",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	p.Logout(first)

	ident, err := p.Identity(second)
	require.NoError(t, err)
	assert.Equal(t, "user456", ident.UserID)
}

func TestLogout_DenylistPurgedAfterExpiry(t *testing.T) {
	p := NewProvider(testSecret)

	credential := signToken(t, jwt.MapClaims{
		"user_id": "user123",
		"exp":     time.Now().Add(time.Second).Unix(),
	})

	p.Logout(credential)
	require.True(t, p.isRevoked(credential))

	// The denylist entry lives only as long as the token itself.
	time.Sleep(2100 * time.Millisecond)
	assert.False(t, p.isRevoked(credential))
}

package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Role of the authenticated party. Anonymous means no valid credential.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
)

// Identity is what the rest of the service knows about the caller. The full
// profile lives behind the external auth API; only the fields needed to guard
// cart and checkout operations are derived here.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

// Anonymous is the zero identity: no user, no role.
var Anonymous = Identity{Role: RoleAnonymous}

func (i Identity) Authenticated() bool {
	return i.Role != RoleAnonymous && i.UserID != ""
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrCredentialRevoked = errors.New("credential revoked")
)

// Provider derives an Identity from the JWT credential issued by the external
// auth collaborator. Validation is local and synchronous; no network calls.
type Provider struct {
	secret []byte

	mu      sync.Mutex
	revoked map[string]time.Time // token -> expiry of the denylist entry
}

func NewProvider(secret string) *Provider {
	return &Provider{
		secret:  []byte(secret),
		revoked: make(map[string]time.Time),
	}
}

// Identity resolves the credential. Any failure (bad signature, expiry,
// revocation) yields the Anonymous identity together with the cause.
func (p *Provider) Identity(credential string) (Identity, error) {
	if credential == "" {
		return Anonymous, ErrInvalidCredential
	}

	if p.isRevoked(credential) {
		return Anonymous, ErrCredentialRevoked
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Anonymous, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Anonymous, ErrInvalidCredential
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		// Some token generations use the subject claim instead.
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return Anonymous, ErrInvalidCredential
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	userType, _ := claims["userType"].(string)

	role := RoleCustomer
	if userType == "admin" {
		role = RoleAdmin
	}

	return Identity{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   role,
	}, nil
}

// Logout invalidates the credential: subsequent Identity calls for the same
// token resolve to Anonymous until the token would have expired anyway.
func (p *Provider) Logout(credential string) {
	expiry := time.Now().Add(24 * time.Hour)

	// Keep the denylist entry only as long as the token itself is live.
	if token, _ := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}); token != nil {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if exp, ok2 := claims["exp"].(float64); ok2 {
				expiry = time.Unix(int64(exp), 0)
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.purgeLocked()
	p.revoked[credential] = expiry
}

func (p *Provider) isRevoked(credential string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purgeLocked()
	_, revoked := p.revoked[credential]
	return revoked
}

func (p *Provider) purgeLocked() {
	now := time.Now()
	for token, expiry := range p.revoked {
		if expiry.Before(now) {
			delete(p.revoked, token)
		}
	}
}

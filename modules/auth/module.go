// Package auth validates session tokens issued by the external auth
// provider. The provider's own protocol (sign-in, refresh, user storage)
// is out of scope; only token verification happens here.
package auth

import (
	"context"
	"log"
	"os"

	"github.com/go-monolith/mono"
)

// Claims is the authenticated identity attached to a request.
type Claims struct {
	UserID string
	Email  string
}

// AuthPort is the boundary the API middleware uses to resolve a bearer
// token into an identity.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// Module provides session validation as a mono module.
type Module struct {
	manager *JWTManager
}

// Compile-time interface checks.
var (
	_ mono.Module = (*Module)(nil)
	_ AuthPort    = (*Module)(nil)
)

// NewModule creates a new auth module, reading JWT_SECRET when set.
func NewModule() *Module {
	cfg := DefaultJWTConfig()
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.SecretKey = secret
	}
	return &Module{manager: NewJWTManager(cfg)}
}

// NewModuleWithConfig creates an auth module with an explicit config.
// Used by tests.
func NewModuleWithConfig(cfg JWTConfig) *Module {
	return &Module{manager: NewJWTManager(cfg)}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "auth"
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[auth] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	return nil
}

// ValidateToken resolves a bearer token into session claims.
func (m *Module) ValidateToken(_ context.Context, token string) (*Claims, error) {
	jwtClaims, err := m.manager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Claims{UserID: jwtClaims.UserID, Email: jwtClaims.Email}, nil
}

// Manager returns the underlying JWT manager, used by development
// tooling to mint tokens.
func (m *Module) Manager() *JWTManager {
	return m.manager
}

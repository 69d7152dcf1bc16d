package oauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleIssuer is the OIDC issuer for Google ID tokens.
const GoogleIssuer = "https://accounts.google.com"

// Identity is the verified subset of an ID token's claims the registry
// cares about.
type Identity struct {
	Email      string
	FullName   string
	PictureURL string
}

// GoogleVerifier validates Google ID tokens against the provider's JWKS
// and the configured client id.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier discovers Google's OIDC configuration. clientID is the
// expected audience.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("discover google oidc provider: %w", err)
	}
	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify checks signature, audience and expiry, and returns the embedded
// identity. Tokens without an email claim are rejected.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	idToken, err := g.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, fmt.Errorf("verify google token: %w", err)
	}
	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("decode google claims: %w", err)
	}
	if claims.Email == "" {
		return Identity{}, fmt.Errorf("google token carries no email")
	}
	return Identity{Email: claims.Email, FullName: claims.Name, PictureURL: claims.Picture}, nil
}

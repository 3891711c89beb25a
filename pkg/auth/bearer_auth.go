package auth

import (
	"fmt"
	"net/http"

	"github.com/saturnines/nexus-pages/pkg/errors"
)

const DefaultBearerScheme = "Bearer"

// BearerAuth sets "Authorization: <scheme> <token>".
type BearerAuth struct {
	Scheme string
	Token  string
}

// NewBearerAuth creates a bearer handler using the standard "Bearer" scheme
func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{Scheme: DefaultBearerScheme, Token: token}
}

// ApplyAuth adds the token to the Authorization header
func (b *BearerAuth) ApplyAuth(req *http.Request) error {
	if b.Token == "" {
		return errors.WrapError(
			fmt.Errorf("token is empty"),
			errors.ErrAuthentication,
			"apply bearer auth",
		)
	}

	scheme := b.Scheme
	if scheme == "" {
		scheme = DefaultBearerScheme
	}
	req.Header.Set("Authorization", scheme+" "+b.Token)

	return nil
}

// String returns a string representation of this auth method for testing
func (b *BearerAuth) String() string {
	return fmt.Sprintf("BearerAuth(scheme: %s, token: [REDACTED])", b.Scheme)
}

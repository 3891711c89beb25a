package auth

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/saturnines/nexus-pages/pkg/errors"
)

// BasicAuth implements HTTP basic authentication. Hosts that take a personal
// access token as the password accept an empty username.
type BasicAuth struct {
	Username string
	Password string
}

// NewBasicAuth creates a new basic authentication handler
func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{
		Username: username,
		Password: password,
	}
}

// ApplyAuth adds the basic auth header to the request
func (b *BasicAuth) ApplyAuth(req *http.Request) error {
	if b.Username == "" && b.Password == "" {
		return errors.WrapError(
			fmt.Errorf("username and password are empty"),
			errors.ErrAuthentication,
			"apply basic auth",
		)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(b.Username + ":" + b.Password))
	req.Header.Set("Authorization", "Basic "+encoded)

	return nil
}

// String never includes the password
func (b *BasicAuth) String() string {
	return fmt.Sprintf("BasicAuth(username: %s)", b.Username)
}

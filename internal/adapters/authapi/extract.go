package authapi

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/dash-console/internal/domain/auth"
)

// Default JMESPath expressions for locating fields in remote responses.
const (
	DefaultTokenPath   = "accessToken"
	DefaultUserPath    = "user"
	DefaultProfilePath = "@"
)

// Paths holds the JMESPath expressions used to pick fields out of responses.
type Paths struct {
	// Token locates the access token in sign-in responses.
	Token string
	// User locates the user object in sign-in responses.
	User string
	// Profile locates the user object in dash/* responses.
	Profile string
}

func (p Paths) withDefaults() Paths {
	if strings.TrimSpace(p.Token) == "" {
		p.Token = DefaultTokenPath
	}
	if strings.TrimSpace(p.User) == "" {
		p.User = DefaultUserPath
	}
	if strings.TrimSpace(p.Profile) == "" {
		p.Profile = DefaultProfilePath
	}
	return p
}

// Validate compiles every expression.
func (p Paths) Validate() error {
	p = p.withDefaults()
	for name, expr := range map[string]string{"token": p.Token, "user": p.User, "profile": p.Profile} {
		if _, err := jmespath.Compile(expr); err != nil {
			return fmt.Errorf("invalid %s path %q: %w", name, expr, err)
		}
	}
	return nil
}

func decodeDocument(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

// extractString returns the string at expr, or "" when absent or not a string.
func extractString(expr string, doc any) (string, error) {
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	s, _ := v.(string)
	return s, nil
}

// extractUser returns the user object at expr, or nil when absent.
func extractUser(expr string, doc any) (*domainauth.CurrentUser, error) {
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("re-encode user: %w", err)
	}
	var user domainauth.CurrentUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

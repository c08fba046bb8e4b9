package config

import (
	"fmt"
	"strings"
	"time"
)

// TokenStoreKind selects where the access token is persisted.
type TokenStoreKind string

const (
	// TokenStoreRedis persists the token in Redis so it survives restarts.
	TokenStoreRedis TokenStoreKind = "redis"
	// TokenStoreMemory keeps the token in process memory only (development and tests).
	TokenStoreMemory TokenStoreKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for TokenStoreKind.
func (k *TokenStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*k = TokenStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid TokenStoreKind: %q (valid options: redis, memory)", v)
	}
}

// AuthMode selects the backend the auth gateway talks to.
type AuthMode string

const (
	// AuthModeRemote uses the remote auth API at AUTH_API_BASE_URL.
	AuthModeRemote AuthMode = "remote"
	// AuthModeDev uses a local single-account stand-in (for development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "remote", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: remote, dev)", v)
	}
}

// DevAuthConfig controls the local dev account.
// Used when AUTH_MODE=dev for development and testing.
type DevAuthConfig struct {
	UserID      string   `env:"USER_ID"     envDefault:"dev-user"`
	Name        string   `env:"NAME"        envDefault:"Dev User"`
	Email       string   `env:"EMAIL"       envDefault:"dev@example.com"`
	Password    string   `env:"PASSWORD"    envDefault:"devpass"`
	Permissions []string `env:"PERMISSIONS" envDefault:"collaborator" envSeparator:";"`
}

// AuthConfig describes the remote authentication API.
type AuthConfig struct {
	// Mode determines which auth backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"remote"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// BaseURL is the API root; endpoint paths such as auth/sign-in are resolved against it.
	BaseURL string        `env:"AUTH_API_BASE_URL" envDefault:"http://localhost:8000/api/"`
	Timeout time.Duration `env:"AUTH_API_TIMEOUT"  envDefault:"15s"`

	// JMESPath expressions locating fields in (decrypted) response documents.
	TokenPath   string `env:"AUTH_API_TOKEN_PATH"   envDefault:"accessToken"`
	UserPath    string `env:"AUTH_API_USER_PATH"    envDefault:"user"`
	ProfilePath string `env:"AUTH_API_PROFILE_PATH" envDefault:"@"`

	// RoleAliases maps API permission codes onto known roles, e.g. "rrhh:hr,gerente:jefe".
	RoleAliases map[string]string `env:"AUTH_ROLE_ALIASES" envSeparator:"," envKeyValSeparator:":"`
}

// Sanitize normalises URL and path settings.
func (c *AuthConfig) Sanitize() {
	if c.Mode == "" {
		c.Mode = AuthModeRemote
	}
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	c.TokenPath = strings.TrimSpace(c.TokenPath)
	c.UserPath = strings.TrimSpace(c.UserPath)
	c.ProfilePath = strings.TrimSpace(c.ProfilePath)

	aliases := make(map[string]string, len(c.RoleAliases))
	for k, v := range c.RoleAliases {
		k, v = strings.ToLower(strings.TrimSpace(k)), strings.ToLower(strings.TrimSpace(v))
		if k != "" && v != "" {
			aliases[k] = v
		}
	}
	c.RoleAliases = aliases
}

// TokenConfig controls persistence of the single access token.
type TokenConfig struct {
	Store TokenStoreKind `env:"TOKEN_STORE" envDefault:"redis"`
	// Key is the storage key of the token, namespaced by Prefix.
	Key    string `env:"TOKEN_KEY"    envDefault:"accessToken"`
	Prefix string `env:"TOKEN_PREFIX" envDefault:"dashconsole:"`
	// EncryptionKey seals the token at rest (hex-encoded 32 bytes or any passphrase).
	// Empty keeps the token readable, which is only suitable for development.
	EncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`
	// TTL bounds how long Redis keeps the token; 0 keeps it until purged.
	TTL time.Duration `env:"TOKEN_TTL" envDefault:"0s"`
	// ExpirySkew treats tokens as expired this long before their exp claim.
	ExpirySkew time.Duration `env:"TOKEN_EXPIRY_SKEW" envDefault:"0s"`
}

// Sanitize applies defaults and clamps negative durations.
func (c *TokenConfig) Sanitize() {
	if c.Store == "" {
		c.Store = TokenStoreRedis
	}
	if c.Key = strings.TrimSpace(c.Key); c.Key == "" {
		c.Key = "accessToken"
	}
	if c.Prefix = strings.TrimSpace(c.Prefix); c.Prefix == "" {
		c.Prefix = "dashconsole:"
	}
	if c.TTL < 0 {
		c.TTL = 0
	}
	if c.ExpirySkew < 0 {
		c.ExpirySkew = 0
	}
}

// EnvelopeConfig configures decryption of encrypted API responses.
type EnvelopeConfig struct {
	// Key is the shared AES key; "base64:"-prefixed values are decoded.
	// Empty disables decryption and enveloped responses then fail to parse.
	Key string `env:"ENVELOPE_KEY"`
	// VerifyMAC checks the envelope's HMAC-SHA256 before decrypting.
	VerifyMAC bool `env:"ENVELOPE_VERIFY_MAC" envDefault:"false"`
}

// Sanitize trims the key.
func (c *EnvelopeConfig) Sanitize() {
	c.Key = strings.TrimSpace(c.Key)
}

// Enabled reports whether a decryption key is configured.
func (c *EnvelopeConfig) Enabled() bool {
	return c.Key != ""
}

package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/target/dash-console/config"
	"github.com/target/dash-console/internal/adapters/authapi"
	"github.com/target/dash-console/internal/adapters/authroles"
	"github.com/target/dash-console/internal/adapters/devauth"
	"github.com/target/dash-console/internal/adapters/memory"
	redisadapter "github.com/target/dash-console/internal/adapters/redis"
	"github.com/target/dash-console/internal/adapters/rolecatalog"
	"github.com/target/dash-console/internal/data/cryptoutil"
	"github.com/target/dash-console/internal/observability/statsd"
	"github.com/target/dash-console/internal/ports"
	"github.com/target/dash-console/internal/service"
)

// AuthConfig contains configuration for the auth gateway.
type AuthConfig struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
	// Transport overrides the outbound round tripper (tests).
	Transport http.RoundTripper
}

// AuthStack is the wired auth gateway with its collaborators.
type AuthStack struct {
	Service *service.AuthService
	API     ports.AuthAPI
	Tokens  ports.TokenStore
	Roles   authroles.StaticRoleMapper
	Catalog *rolecatalog.Catalog
}

// BuildAuthStack wires the remote API client, the token store and the role
// tables into an AuthService. The client reads its bearer token from the
// service it is handed to.
func BuildAuthStack(cfg AuthConfig) (*AuthStack, error) {
	if cfg.Config == nil {
		return nil, errors.New("auth config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := buildTokenStore(cfg.Config.Token, cfg.RedisClient, logger)
	if err != nil {
		return nil, err
	}

	var svc *service.AuthService
	tokenSource := authapi.TokenFunc(func() string { return svc.AccessToken() })

	api, err := buildAuthAPI(cfg, tokenSource, logger)
	if err != nil {
		return nil, err
	}

	roles := authroles.StaticRoleMapper{Aliases: cfg.Config.Auth.RoleAliases}
	catalog := rolecatalog.New(rolecatalog.Options{Normalize: roles.Normalize, Logger: logger})

	svc = service.NewAuthService(service.AuthServiceOptions{
		API:        api,
		Tokens:     tokens,
		Roles:      roles,
		Catalog:    catalog,
		Logger:     logger,
		Metrics:    cfg.Metrics,
		ExpirySkew: cfg.Config.Token.ExpirySkew,
	})

	return &AuthStack{
		Service: svc,
		API:     api,
		Tokens:  tokens,
		Roles:   roles,
		Catalog: catalog,
	}, nil
}

//nolint:ireturn // the backend is chosen at runtime.
func buildAuthAPI(cfg AuthConfig, tokens authapi.TokenFunc, logger *slog.Logger) (ports.AuthAPI, error) {
	auth := cfg.Config.Auth
	if auth.Mode == config.AuthModeDev {
		logger.Warn("dev auth mode enabled; remote auth API is not used", "email", auth.DevAuth.Email)
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:      auth.DevAuth.UserID,
			Name:        auth.DevAuth.Name,
			Email:       auth.DevAuth.Email,
			Password:    auth.DevAuth.Password,
			Permissions: auth.DevAuth.Permissions,
			Tokens:      tokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil
	}

	opener, err := CreateEnvelopeDecryptor(cfg.Config.Envelope, logger)
	if err != nil {
		return nil, err
	}
	opts := authapi.ClientOptions{
		BaseURL:   auth.BaseURL,
		Tokens:    tokens,
		Transport: cfg.Transport,
		Timeout:   auth.Timeout,
		Paths: authapi.Paths{
			Token:   auth.TokenPath,
			User:    auth.UserPath,
			Profile: auth.ProfilePath,
		},
		Logger: logger,
	}
	// Assigned only when set so the interface never holds a typed nil.
	if opener != nil {
		opts.Opener = opener
	}
	client, err := authapi.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create auth api client: %w", err)
	}
	return client, nil
}

//nolint:ireturn // the store kind is chosen at runtime.
func buildTokenStore(cfg config.TokenConfig, client redis.UniversalClient, logger *slog.Logger) (ports.TokenStore, error) {
	switch cfg.Store {
	case config.TokenStoreMemory:
		logger.Warn("token store is in memory; sessions do not survive restarts")
		return memory.NewTokenStore(""), nil
	case config.TokenStoreRedis, "":
		if client == nil {
			return nil, errors.New("redis token store requires a redis client")
		}
		var enc cryptoutil.Encryptor = CreateEncryptor(cfg.EncryptionKey, logger)
		return redisadapter.NewTokenStore(client, redisadapter.TokenStoreOptions{
			Prefix:    cfg.Prefix,
			Key:       cfg.Key,
			Encryptor: enc,
			TTL:       cfg.TTL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Store)
	}
}

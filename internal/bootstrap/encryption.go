package bootstrap

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/dash-console/config"
	"github.com/target/dash-console/internal/data/cryptoutil"
)

// CreateEncryptor creates the AES-GCM encryptor sealing the persisted access token.
// If the key is a hex string, it decodes it. Otherwise, it hashes the key to get a 32-byte key.
// Returns a noop encryptor if the key is empty or invalid (with warning log).
//
//nolint:ireturn // Returning interface is intentional for encryptor abstraction
func CreateEncryptor(key string, logger *slog.Logger) cryptoutil.Encryptor {
	if key == "" {
		if logger != nil {
			logger.Warn("encryption key is empty, using noop encryptor")
		}
		return &cryptoutil.NoopEncryptor{}
	}

	enc, err := createAESGCMEncryptor(key)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create encryptor, using noop encryptor", "error", err)
		}
		return &cryptoutil.NoopEncryptor{}
	}

	return enc
}

func createAESGCMEncryptor(key string) (*cryptoutil.AESGCMEncryptor, error) {
	if key == "" {
		return nil, errors.New("encryption key is required")
	}

	// If the key is a hex string, decode it
	var keyBytes []byte
	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		keyBytes = decoded
	} else {
		// Otherwise, hash the key to get a 32-byte key
		hash := sha256.Sum256([]byte(key))
		keyBytes = hash[:]
	}

	return cryptoutil.NewAESGCMEncryptor(keyBytes)
}

// CreateEnvelopeDecryptor builds the decryptor for encrypted API responses.
// It returns nil without error when no key is configured; enveloped
// responses then fail to parse instead of being opened.
func CreateEnvelopeDecryptor(cfg config.EnvelopeConfig, logger *slog.Logger) (*cryptoutil.EnvelopeDecryptor, error) {
	if !cfg.Enabled() {
		if logger != nil {
			logger.Warn("envelope key is empty, encrypted responses cannot be read")
		}
		return nil, nil
	}
	key, err := cryptoutil.ParseEnvelopeKey(cfg.Key)
	if err != nil {
		return nil, err
	}
	dec, err := cryptoutil.NewEnvelopeDecryptor(key, cryptoutil.EnvelopeOptions{VerifyMAC: cfg.VerifyMAC})
	if err != nil {
		return nil, fmt.Errorf("create envelope decryptor: %w", err)
	}
	return dec, nil
}

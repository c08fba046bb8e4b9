package cryptoutil

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMEncryptor_TokenRoundTrip(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	token := []byte("eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjE3MDAwMDAwMDB9.sig")
	sealed, err := enc.Encrypt(token)
	require.NoError(t, err)
	assert.True(t, len(sealed) > len(cipherPrefixV1))
	assert.Equal(t, cipherPrefixV1, sealed[:len(cipherPrefixV1)])
	assert.NotContains(t, sealed, string(token))

	opened, err := enc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, token, opened)
}

func TestAESGCMEncryptor_ReadsNoopValues(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	stored, err := NoopEncryptor{}.Encrypt([]byte("dev-token"))
	require.NoError(t, err)

	opened, err := enc.Decrypt(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("dev-token"), opened)
}

func TestAESGCMEncryptor_InvalidKey(t *testing.T) {
	_, err := NewAESGCMEncryptor([]byte("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 32 bytes")
}

func TestAESGCMEncryptor_InvalidCiphertext(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	_, err = enc.Decrypt("v2:somedata")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ciphertext version")

	_, err = enc.Decrypt("v1:!!!invalid!!!")
	require.Error(t, err)

	_, err = enc.Decrypt("v1:" + base64.StdEncoding.EncodeToString([]byte("x")))
	require.Error(t, err)
}

func TestNoopEncryptor_RejectsForeignValues(t *testing.T) {
	_, err := NoopEncryptor{}.Decrypt("v1:abc")
	require.Error(t, err)
}

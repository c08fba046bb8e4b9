package cryptoutil

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/target/dash-console/internal/errors"
)

// keyPrefixBase64 marks keys given in base64 form, as emitted by the API's key generator.
const keyPrefixBase64 = "base64:"

var (
	errBadPadding = errors.New("invalid PKCS#7 padding")
	errBadMAC     = errors.New("envelope MAC mismatch")
)

// ParseEnvelopeKey decodes a configured envelope key. Keys prefixed with
// "base64:" are base64-decoded, anything else is used as raw bytes.
func ParseEnvelopeKey(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, keyPrefixBase64); ok {
		key, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("decode base64 envelope key: %w", err)
		}
		return key, nil
	}
	return []byte(s), nil
}

// envelopePayload is the JSON document carried base64-encoded in the envelope's data field.
type envelopePayload struct {
	IV    string `json:"iv"`
	Value string `json:"value"`
	MAC   string `json:"mac"`
	Tag   string `json:"tag"`
}

// EnvelopeOptions configure an EnvelopeDecryptor.
type EnvelopeOptions struct {
	// VerifyMAC enables HMAC-SHA256 verification of iv||value before decrypting.
	VerifyMAC bool
}

// EnvelopeDecryptor opens `{"encrypted": true, "data": "..."}` response bodies
// produced by the API: AES-CBC with PKCS#7 padding, per-message IV.
type EnvelopeDecryptor struct {
	key       []byte
	verifyMAC bool
}

// NewEnvelopeDecryptor constructs a decryptor. Key must be 16, 24 or 32 bytes.
func NewEnvelopeDecryptor(key []byte, opts EnvelopeOptions) (*EnvelopeDecryptor, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("envelope key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	return &EnvelopeDecryptor{key: append([]byte(nil), key...), verifyMAC: opts.VerifyMAC}, nil
}

// IsEnvelope reports whether body is an encrypted envelope and returns its data field.
func IsEnvelope(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return "", false
	}
	var encrypted bool
	if raw, ok := fields["encrypted"]; !ok || json.Unmarshal(raw, &encrypted) != nil || !encrypted {
		return "", false
	}
	var data string
	if raw, ok := fields["data"]; !ok || json.Unmarshal(raw, &data) != nil {
		return "", false
	}
	return data, true
}

// Open returns the decrypted JSON document when body is an envelope, and body
// itself, unchanged, otherwise. Errors are coded ErrCodeDecryption and never
// come with partial plaintext.
func (d *EnvelopeDecryptor) Open(body []byte) ([]byte, error) {
	data, ok := IsEnvelope(body)
	if !ok {
		return body, nil
	}
	plaintext, err := d.decrypt(data)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDecryption, "decrypt response envelope")
	}
	return plaintext, nil
}

func (d *EnvelopeDecryptor) decrypt(data string) ([]byte, error) {
	rawPayload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode envelope data: %w", err)
	}
	var p envelopePayload
	if err = json.Unmarshal(rawPayload, &p); err != nil {
		return nil, fmt.Errorf("parse envelope payload: %w", err)
	}
	if d.verifyMAC {
		if err = d.checkMAC(p); err != nil {
			return nil, err
		}
	}

	iv, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	ct, err := base64.StdEncoding.DecodeString(p.Value)
	if err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(ct))
	}

	block, err := aes.NewCipher(d.key)
	if err != nil {
		return nil, err
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
	pt, err = unpad(pt)
	if err != nil {
		return nil, err
	}
	if !json.Valid(pt) {
		return nil, errors.New("decrypted payload is not valid JSON")
	}
	return pt, nil
}

func (d *EnvelopeDecryptor) checkMAC(p envelopePayload) error {
	want, err := hex.DecodeString(p.MAC)
	if err != nil {
		return fmt.Errorf("decode mac: %w", err)
	}
	if !hmac.Equal(want, macFor(d.key, p.IV, p.Value)) {
		return errBadMAC
	}
	return nil
}

func macFor(key []byte, iv, value string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(iv + value))
	return h.Sum(nil)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errBadPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}

// Seal builds an envelope around plaintext with the given IV. It is the
// inverse of Open and is used by fakes of the remote API.
func (d *EnvelopeDecryptor) Seal(plaintext, iv []byte) ([]byte, error) {
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	block, err := aes.NewCipher(d.key)
	if err != nil {
		return nil, err
	}
	n := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte(nil), plaintext...), bytes.Repeat([]byte{byte(n)}, n)...)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	p := envelopePayload{
		IV:    base64.StdEncoding.EncodeToString(iv),
		Value: base64.StdEncoding.EncodeToString(ct),
	}
	p.MAC = hex.EncodeToString(macFor(d.key, p.IV, p.Value))
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"encrypted": true,
		"data":      base64.StdEncoding.EncodeToString(raw),
	})
}

package cryptoutil

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/dash-console/internal/errors"
)

// Fixture produced with `openssl enc -aes-256-cbc` so Open is checked against
// an independent implementation.
const (
	fixtureKey       = "12345678901234567890123456789012"
	fixtureIV        = "AAECAwQFBgcICQoLDA0ODw=="
	fixturePlaintext = `{"accessToken":"tok-123","user":{"id":"7","permissions":["hr"]}}`
	fixtureValue     = "M1nPaCo1kg1HVLUAU7L5UrnrdBlqEImYelNBjnduUBfrXcRWcTzt4j7bnZ1wF297joePKpJv3lgBjSFONReuh687NYgwC1krEV3zc/aohaw="
	fixtureMAC       = "61dd807a588a39184be5d8085c9e9891023c4f7d75e5d9c8b9f6381b8daae10e"
	fixtureData      = "eyJpdiI6IkFBRUNBd1FGQmdjSUNRb0xEQTBPRHc9PSIsInZhbHVlIjoiTTFuUGFDbzFrZzFIVkxVQVU3TDVVcm5yZEJscUVJbVllbE5Cam5kdVVCZnJYY1JXY1R6dDRqN2JuWjF3RjI5N2pvZVBLcEp2M2xnQmpTRk9OUmV1aDY4N05ZZ3dDMWtyRVYzemMvYW9oYXc9IiwibWFjIjoiNjFkZDgwN2E1ODhhMzkxODRiZTVkODA4NWM5ZTk4OTEwMjNjNGY3ZDc1ZTVkOWM4YjlmNjM4MWI4ZGFhZTEwZSIsInRhZyI6IiJ9"
)

func fixtureEnvelope() []byte {
	return []byte(`{"encrypted":true,"data":"` + fixtureData + `"}`)
}

func envelopeFrom(t *testing.T, p envelopePayload) []byte {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{"encrypted": true, "data": base64.StdEncoding.EncodeToString(raw)})
	require.NoError(t, err)
	return body
}

func newFixtureDecryptor(t *testing.T, verify bool) *EnvelopeDecryptor {
	t.Helper()
	d, err := NewEnvelopeDecryptor([]byte(fixtureKey), EnvelopeOptions{VerifyMAC: verify})
	require.NoError(t, err)
	return d
}

func TestEnvelopeDecryptor_OpenFixture(t *testing.T) {
	for _, verify := range []bool{false, true} {
		d := newFixtureDecryptor(t, verify)
		got, err := d.Open(fixtureEnvelope())
		require.NoError(t, err)
		assert.JSONEq(t, fixturePlaintext, string(got))
	}
}

func TestEnvelopeDecryptor_PassThrough(t *testing.T) {
	d := newFixtureDecryptor(t, false)

	bodies := []string{
		`{"accessToken":"abc","user":{"id":"1"}}`,
		`{"encrypted":false,"data":"` + fixtureData + `"}`,
		`{"encrypted":true}`,
		`{"encrypted":"yes","data":"x"}`,
		`[1,2,3]`,
		`not json at all`,
		``,
	}
	for _, body := range bodies {
		got, err := d.Open([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, []byte(body), got, "body must be returned byte-for-byte")
	}
}

func TestEnvelopeDecryptor_WrongKey(t *testing.T) {
	d, err := NewEnvelopeDecryptor([]byte("abcdefghijklmnopqrstuvwxyz012345"), EnvelopeOptions{})
	require.NoError(t, err)

	got, err := d.Open(fixtureEnvelope())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperrors.IsDecryption(err))
}

func TestEnvelopeDecryptor_MACMismatch(t *testing.T) {
	body := envelopeFrom(t, envelopePayload{IV: fixtureIV, Value: fixtureValue, MAC: "00" + fixtureMAC[2:]})

	_, err := newFixtureDecryptor(t, true).Open(body)
	require.Error(t, err)
	assert.True(t, apperrors.IsDecryption(err))
	assert.ErrorIs(t, err, errBadMAC)

	// Verification is opt-in.
	got, err := newFixtureDecryptor(t, false).Open(body)
	require.NoError(t, err)
	assert.JSONEq(t, fixturePlaintext, string(got))
}

func TestEnvelopeDecryptor_MalformedPayloads(t *testing.T) {
	d := newFixtureDecryptor(t, false)

	cases := map[string][]byte{
		"data not base64": []byte(`{"encrypted":true,"data":"%%%"}`),
		"payload not json": []byte(`{"encrypted":true,"data":"` +
			base64.StdEncoding.EncodeToString([]byte("nope")) + `"}`),
		"short iv":       envelopeFrom(t, envelopePayload{IV: "AAEC", Value: fixtureValue}),
		"truncated body": envelopeFrom(t, envelopePayload{IV: fixtureIV, Value: fixtureValue[:20]}),
		"empty value":    envelopeFrom(t, envelopePayload{IV: fixtureIV}),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := d.Open(body)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, apperrors.IsDecryption(err))
		})
	}
}

func TestEnvelopeDecryptor_SealRoundTrip(t *testing.T) {
	d := newFixtureDecryptor(t, true)
	iv, err := base64.StdEncoding.DecodeString(fixtureIV)
	require.NoError(t, err)

	body, err := d.Seal([]byte(fixturePlaintext), iv)
	require.NoError(t, err)

	data, ok := IsEnvelope(body)
	require.True(t, ok)
	assert.Equal(t, fixtureData[:40], data[:40])

	got, err := d.Open(body)
	require.NoError(t, err)
	assert.JSONEq(t, fixturePlaintext, string(got))
}

func TestEnvelopeDecryptor_RejectsNonJSONPlaintext(t *testing.T) {
	d := newFixtureDecryptor(t, false)
	body, err := d.Seal([]byte("plain text"), make([]byte, 16))
	require.NoError(t, err)

	_, err = d.Open(body)
	require.Error(t, err)
	assert.True(t, apperrors.IsDecryption(err))
}

func TestParseEnvelopeKey(t *testing.T) {
	raw, err := ParseEnvelopeKey(fixtureKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(fixtureKey), raw)

	encoded := "base64:" + base64.StdEncoding.EncodeToString([]byte(fixtureKey))
	decoded, err := ParseEnvelopeKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte(fixtureKey), decoded)

	_, err = ParseEnvelopeKey("base64:***")
	require.Error(t, err)

	_, err = NewEnvelopeDecryptor([]byte("short"), EnvelopeOptions{})
	require.Error(t, err)
}

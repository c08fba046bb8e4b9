package authapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	apperrors "github.com/target/dash-console/internal/errors"
)

// maxResponseBytes caps how much of a remote response is buffered for decryption.
const maxResponseBytes = 4 << 20

// readLimited reads r in full, failing instead of truncating when r holds
// more than maxResponseBytes.
func readLimited(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxResponseBytes {
		return nil, apperrors.Remote(http.StatusBadGateway,
			fmt.Sprintf("response body exceeds %d bytes", maxResponseBytes))
	}
	return raw, nil
}

// BodyOpener turns a raw response body into the body callers should see.
// cryptoutil.EnvelopeDecryptor satisfies it.
type BodyOpener interface {
	Open(body []byte) ([]byte, error)
}

// DecryptingTransport opens encrypted response envelopes before the body
// reaches the caller. Plain bodies pass through unchanged. A body that looks
// like an envelope but cannot be opened fails the round trip.
type DecryptingTransport struct {
	Base   http.RoundTripper
	Opener BodyOpener
}

func (t *DecryptingTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *DecryptingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(req)
	if err != nil || t.Opener == nil {
		return resp, err
	}

	raw, err := readLimited(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	body, err := t.Opener.Open(raw)
	if err != nil {
		return nil, err
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return resp, nil
}

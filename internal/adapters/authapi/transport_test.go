package authapi

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/dash-console/internal/errors"
)

type openerFunc func([]byte) ([]byte, error)

func (f openerFunc) Open(b []byte) ([]byte, error) { return f(b) }

func TestDecryptingTransport_ReplacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "sealed")
	}))
	defer srv.Close()

	hc := &http.Client{Transport: &DecryptingTransport{Opener: openerFunc(func(b []byte) ([]byte, error) {
		return []byte(strings.ToUpper(string(b))), nil
	})}}
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "SEALED", string(body))
	assert.Equal(t, int64(6), resp.ContentLength)
}

func TestDecryptingTransport_OpenError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "sealed")
	}))
	defer srv.Close()

	boom := errors.New("boom")
	hc := &http.Client{Transport: &DecryptingTransport{Opener: openerFunc(func([]byte) ([]byte, error) {
		return nil, boom
	})}}
	_, err := hc.Get(srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDecryptingTransport_OversizedBodyFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", maxResponseBytes+10))
	}))
	defer srv.Close()

	var opened bool
	hc := &http.Client{Transport: &DecryptingTransport{Opener: openerFunc(func(b []byte) ([]byte, error) {
		opened = true
		return b, nil
	})}}
	resp, err := hc.Get(srv.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	assert.False(t, opened)
}

func TestReadLimited_AcceptsBodyAtLimit(t *testing.T) {
	raw, err := readLimited(strings.NewReader(strings.Repeat("a", maxResponseBytes)))
	require.NoError(t, err)
	assert.Len(t, raw, maxResponseBytes)
}

func TestDecryptingTransport_NoOpener(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"encrypted":true,"data":"x"}`)
	}))
	defer srv.Close()

	resp, err := (&http.Client{Transport: &DecryptingTransport{}}).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"encrypted":true,"data":"x"}`, string(body))
}

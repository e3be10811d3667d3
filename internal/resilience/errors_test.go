package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 429, HTTPStatus(eris.Wrap(&statusErr{code: 429}, "google: search")))
	assert.Equal(t, 503, HTTPStatus(NewTransientError(errors.New("x"), 503)))
	assert.Equal(t, 0, HTTPStatus(errors.New("plain")))
	assert.Equal(t, 0, HTTPStatus(nil))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(fmt.Errorf("wrapped: %w", &statusErr{code: 429})))
	assert.False(t, IsRateLimited(&statusErr{code: 500}))
	assert.False(t, IsRateLimited(nil))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit", NewTransientError(errors.New("x"), 0), true},
		{"status 503", &statusErr{code: 503}, true},
		{"status 404", &statusErr{code: 404}, false},
		{"timeout", &net.DNSError{IsTimeout: true, Err: "timeout"}, true},
		{"reset", fmt.Errorf("write: %w", syscall.ECONNRESET), true},
		{"pattern", errors.New("read tcp: i/o timeout"), true},
		{"permanent", errors.New("invalid input"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

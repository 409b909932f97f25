package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusError_NotFoundIsSentinel(t *testing.T) {
	t.Parallel()

	err := StatusError("GET", "http://x/20240101.xml", http.StatusNotFound)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, IsTransient(err))
}

func TestIsTransient_StatusCodes(t *testing.T) {
	t.Parallel()

	cases := map[int]bool{
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusBadRequest:          false,
		http.StatusForbidden:           false,
	}
	for code, want := range cases {
		err := StatusError("GET", "http://x", code)
		require.Equalf(t, want, IsTransient(err), "status %d", code)
	}
}

func TestIsTransient_WrappedDeadline(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("probe: %w", &TransportError{Op: "GET", URL: "http://x", Err: context.DeadlineExceeded})
	require.True(t, IsTransient(err))

	var te *TransportError
	require.True(t, errors.As(err, &te))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeError_NotTransient(t *testing.T) {
	t.Parallel()

	err := &DecodeError{Source: TCMB, Err: errors.New("unexpected EOF")}
	require.False(t, IsTransient(err))
	require.Contains(t, err.Error(), "tcmb")
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "tcmb", TCMB.String())
	require.Equal(t, "finnhub", Finnhub.String())
	require.Equal(t, "binance", Binance.String())
	require.Equal(t, "source(9)", Kind(9).String())
}

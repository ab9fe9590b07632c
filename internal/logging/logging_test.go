package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReturnsLogger(t *testing.T) {
	l := New("earley")
	require.NotNil(t, l)
}

func TestContextRoundTrip(t *testing.T) {
	l := New("poset")
	ctx := WithContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))
}

func TestFromContextWithoutAttachedLoggerReturnsUsableDefault(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
}

package redisx_test

import (
	"testing"
	"time"

	"github.com/ariefcatur/go-shop-cart.git/internal/redisx"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesTimeout(t *testing.T) {
	c := redisx.New("localhost:6379")
	defer c.Close()

	require.Equal(t, 2*time.Second, c.Options().ReadTimeout)
	require.Equal(t, 2*time.Second, c.Options().WriteTimeout)
}

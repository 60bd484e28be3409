package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSideValid(t *testing.T) {
	require.True(t, SideBuy.Valid())
	require.True(t, SideSell.Valid())
	require.False(t, Side("HOLD").Valid())
	require.False(t, Side("buy").Valid())
	require.False(t, Side("").Valid())
}

func TestNormalizeSymbol(t *testing.T) {
	require.Equal(t, "AAPL", NormalizeSymbol(" aapl "))
	require.Equal(t, "TSLA", NormalizeSymbol("TSLA"))
	require.Equal(t, "", NormalizeSymbol("   "))
}

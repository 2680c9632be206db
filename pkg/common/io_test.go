package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStringContentIfRequiredFromTerminal_keepsPresentValue(t *testing.T) {
	v := "present"
	require.NoError(t, RequestStringContentIfRequiredFromTerminal(&v, "something", false, true))

	assert.Equal(t, "present", v)
}

func TestTrimmedString_Set(t *testing.T) {
	var v trimmedString

	require.NoError(t, v.Set("  \t"))
	assert.True(t, v.IsZero())

	require.NoError(t, v.Set(" secret \n"))
	assert.Equal(t, trimmedString("secret"), v)
}

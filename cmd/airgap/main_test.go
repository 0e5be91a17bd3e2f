package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	assert.Equal(t, "0b1c2d3e", shortID("0b1c2d3e-4f5a-6789-abcd-ef0123456789"))
	assert.Equal(t, "short", shortID("short"))
	assert.Equal(t, "", shortID(""))
}

func TestRunCheck_ListsComeThroughViper(t *testing.T) {
	// Config-file keys reach the command without any flag being set.
	viper.Set("check.allow-host", []string{"ok.test"})
	t.Cleanup(func() { viper.Set("check.allow-host", nil) })

	require.NoError(t, runCheck(checkCmd, []string{"ok.test"}))

	err := runCheck(checkCmd, []string{"denied.test"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHostsBlocked)
}

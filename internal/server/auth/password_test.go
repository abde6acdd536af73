package auth

import (
	"testing"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter23"), common.ErrorInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "hunter22"), common.ErrorInvalidCredentials)
}

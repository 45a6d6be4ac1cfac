package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PERSONA_TEST_STR", "Investor")
	t.Setenv("PERSONA_TEST_BLANK", "  ")
	t.Setenv("PERSONA_TEST_FLOAT", "0.05")
	t.Setenv("PERSONA_TEST_INT", " 25 ")
	t.Setenv("PERSONA_TEST_BAD", "abc")
	t.Setenv("PERSONA_TEST_BOOL", "true")

	assert.Equal(t, "Investor", GetEnv("PERSONA_TEST_STR"))
	assert.Equal(t, "", GetEnv("PERSONA_TEST_MISSING"))
	assert.Equal(t, "fallback", GetEnvString("PERSONA_TEST_BLANK", "fallback"))
	assert.Equal(t, "fallback", GetEnvString("PERSONA_TEST_MISSING", "fallback"))
	assert.InDelta(t, 0.05, GetEnvNumeric("PERSONA_TEST_FLOAT", 0.01), 1e-12)
	assert.InDelta(t, 0.01, GetEnvNumeric("PERSONA_TEST_BAD", 0.01), 1e-12)
	assert.Equal(t, 25, GetEnvInt("PERSONA_TEST_INT", 10))
	assert.Equal(t, 10, GetEnvInt("PERSONA_TEST_BAD", 10))
	assert.True(t, GetEnvBool("PERSONA_TEST_BOOL", false))
	assert.False(t, GetEnvBool("PERSONA_TEST_BAD", false))
}

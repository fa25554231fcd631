package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TASKS_TEST_VALUE", "set")
	t.Setenv("TASKS_TEST_BLANK", "  ")

	assert.Equal(t, "set", EnvOrDefault("TASKS_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", EnvOrDefault("TASKS_TEST_BLANK", "fallback"))
	assert.Equal(t, "fallback", EnvOrDefault("TASKS_TEST_UNSET", "fallback"))
}

func TestEnvIntOrDefault(t *testing.T) {
	t.Setenv("TASKS_TEST_INT", "8")
	t.Setenv("TASKS_TEST_BAD", "eight")

	assert.Equal(t, 8, EnvIntOrDefault("TASKS_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntOrDefault("TASKS_TEST_BAD", 1))
	assert.Equal(t, 1, EnvIntOrDefault("TASKS_TEST_UNSET", 1))
}

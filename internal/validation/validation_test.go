package validation_test

import (
	"strings"
	"testing"

	"scribbles/internal/validation"

	"github.com/stretchr/testify/assert"
)

func TestUsernameRule(t *testing.T) {
	v := validation.New()

	valid := []string{"ab", "alice", "user_99", strings.Repeat("a", validation.UsernameMaxLen)}
	for _, name := range valid {
		assert.NoError(t, v.Var(name, "username"), "expected %q to be valid", name)
	}

	invalid := []string{"a", strings.Repeat("a", validation.UsernameMaxLen+1), "bad name", "nope!", "dash-ed"}
	for _, name := range invalid {
		assert.Error(t, v.Var(name, "username"), "expected %q to be invalid", name)
	}
}

func TestPasswordRule(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("secret", "password"))
	assert.NoError(t, v.Var(strings.Repeat("p", validation.PasswordMaxLen), "password"))
	assert.Error(t, v.Var("short", "password"))
	assert.Error(t, v.Var(strings.Repeat("p", validation.PasswordMaxLen+1), "password"))
}

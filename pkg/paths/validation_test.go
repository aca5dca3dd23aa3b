package paths_test

import (
	"strings"
	"testing"

	"github.com/andisab/mise-en-place/pkg/paths"
	"github.com/stretchr/testify/assert"
)

func TestValidatePathSecurity(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain", "zsh/.zshrc", false},
		{"dots_in_name", "config..bak", false},
		{"parent_reference", "../secrets", true},
		{"nested_parent_reference", "a/../../b", true},
		{"empty", "", true},
		{"nul_byte", "a\x00b", true},
		{"too_long", strings.Repeat("a", 5000), true},
		{"rtl_override", "file\u202etxt.sh", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := paths.ValidatePathSecurity(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsDangerousDestination(t *testing.T) {
	assert.True(t, paths.IsDangerousDestination("/"))
	assert.True(t, paths.IsDangerousDestination("~"))
	assert.True(t, paths.IsDangerousDestination("~/"))
	assert.False(t, paths.IsDangerousDestination(".zshrc"))
	assert.False(t, paths.IsDangerousDestination("~/.zshrc"))
}

func TestContainsPath(t *testing.T) {
	assert.True(t, paths.ContainsPath("/home/u", "/home/u/.zshrc"))
	assert.True(t, paths.ContainsPath("/home/u", "/home/u/..hidden"))
	assert.False(t, paths.ContainsPath("/home/u", "/home/other"))
	assert.False(t, paths.ContainsPath("/home/u", "/etc"))
}

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfigContent(t *testing.T) {
	content := GenerateConfigContent()

	assert.Contains(t, content, "[sync]")
	assert.Contains(t, content, `# strategy = "ask"`)

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
			continue
		}
		t.Errorf("uncommented assignment left in generated config: %q", line)
	}
}

func TestRender(t *testing.T) {
	cfg := Defaults()
	cfg.Sync.Strategy = "replace"

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "[sync]")
	assert.Regexp(t, `strategy = ['"]replace['"]`, out)
	assert.Contains(t, out, "backup_dir")
}

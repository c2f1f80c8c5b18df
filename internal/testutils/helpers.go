package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/hostline/pkg/domain"
)

// Override describes one prompt override file.
type Override struct {
	State domain.State `yaml:"state,omitempty"`
	Name  string       `yaml:"name,omitempty"`
	Slots []string     `yaml:"slots,omitempty"`
	Body  string       `yaml:"-"`
}

// Markdown renders the override as a frontmatter document.
func (o Override) Markdown(t *testing.T) string {
	t.Helper()
	meta, err := yaml.Marshal(o)
	require.NoError(t, err, "marshal frontmatter")
	return "---\n" + string(meta) + "---\n" + o.Body
}

// WriteTemplates creates a temporary template directory holding files,
// keyed by file name. It fails the test immediately on error.
func WriteTemplates(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600), "write %s", name)
	}
	return dir
}

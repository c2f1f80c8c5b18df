package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/hostline/pkg/domain"
)

// OverrideMetadata is the frontmatter of a template override document.
type OverrideMetadata struct {
	State string   `json:"state" mapstructure:"state"`
	Name  string   `json:"name" mapstructure:"name"`
	Slots []string `json:"slots" mapstructure:"slots"`
}

// LoadOverrides reads every markdown document under dir as a template.
// A document without a state in its frontmatter is keyed by its file name.
func LoadOverrides(ctx context.Context, dir string) ([]Template, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid template dir: %w", err)
	}

	// Read-only keeps loam from staging a sandbox copy of the directory.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	typed := loam.NewTypedRepository[OverrideMetadata](repo)
	docs, err := typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make([]Template, 0, len(docs))
	seen := make(map[domain.State]string)
	for _, doc := range docs {
		name := doc.Data.State
		if name == "" {
			name = trimExtension(doc.ID)
		}
		state, err := domain.ParseState(name)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", doc.ID, err)
		}
		if prev, ok := seen[state]; ok {
			return nil, fmt.Errorf("collision detected: state '%s' is defined in both '%s' and '%s'", state, prev, doc.ID)
		}
		seen[state] = doc.ID

		tplName := doc.Data.Name
		if tplName == "" {
			tplName = string(state)
		}
		out = append(out, Template{
			State:  state,
			Name:   tplName,
			Slots:  doc.Data.Slots,
			Source: doc.Content,
		})
	}
	return out, nil
}

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	if ext := filepath.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.Base(id)
}

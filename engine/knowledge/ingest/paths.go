package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/compozy/docsplit/pkg/logger"
)

const globMeta = "*?[{"

// ExpandPaths resolves doublestar patterns into regular files. Matches are sorted per pattern and
// duplicates across patterns are dropped. Literal paths are kept as given even when missing so the
// caller reports the failure for that file.
func ExpandPaths(ctx context.Context, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(patterns))
	add := func(p string) {
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		if !strings.ContainsAny(pattern, globMeta) {
			add(pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("ingest: glob %q failed: %w", pattern, err)
		}
		if len(matches) == 0 {
			logger.FromContext(ctx).Warn("Glob returned no files", "pattern", pattern)
			continue
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

package extract

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func memOptions(t *testing.T, files map[string][]byte) Options {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
	}
	opts := DefaultOptions()
	opts.Fs = fs
	return opts
}

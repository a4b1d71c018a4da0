package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_KnownDigest(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Sum(nil))
}

func TestFile_MatchesSum(t *testing.T) {
	data := []byte("# Call the plumber\n- [ ] find number\n")
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Sum(data), got)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "gone.md"))
	assert.Error(t, err)
}

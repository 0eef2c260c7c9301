package framework

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadYAMLFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "cdh-fx")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	var out struct {
		Name string `yaml:"name"`
	}
	path := filepath.Join(dir, "ok.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("name: bench\n"), 0644))
	require.NoError(t, LoadYAMLFile(path, &out))
	require.Equal(t, "bench", out.Name)

	path = filepath.Join(dir, "strict.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("name: bench\nextra: 1\n"), 0644))
	require.Error(t, LoadYAMLFile(path, &out))
}

package configutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davideneu/hattrick-matchview/lib/configutil"
)

type testConfig struct {
	ConsumerKey  string `json:"consumer_key"`
	KeychainPath string `json:"keychain_path"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchview.json5")
	writeFile(t, path, `{consumer_key: "abc", keychain_path: "matchview.db"}`)

	config, err := configutil.ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "abc", config.ConsumerKey)
	require.Equal(t, "matchview.db", config.KeychainPath)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "matchview.json5"),
		`{consumer_key: "abc", keychain_path: "matchview.db"}`)
	writeFile(t, filepath.Join(dir, "matchview.local.json5"),
		`{consumer_key: "local-key"}`)

	config, err := configutil.ReadConfig[testConfig](filepath.Join(dir, "matchview.json5"))
	require.NoError(t, err)
	require.Equal(t, "local-key", config.ConsumerKey)
	require.Equal(t, "matchview.db", config.KeychainPath)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "matchview.local.json5"), `{consumer_key: "only"}`)

	config, err := configutil.ReadConfig[testConfig](filepath.Join(dir, "matchview.json5"))
	require.NoError(t, err)
	require.Equal(t, "only", config.ConsumerKey)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := configutil.ReadConfig[testConfig](filepath.Join(dir, "matchview.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchview.json5")
	writeFile(t, path, `{consumer_key:`)

	_, err := configutil.ReadConfig[testConfig](path)
	require.Error(t, err)
	require.Contains(t, err.Error(), path)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFile(t, filepath.Join(root, "matchview.json5"), `{consumer_key: "up"}`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	config, err := configutil.ReadRecursively[testConfig]("matchview.json5")
	require.NoError(t, err)
	require.Equal(t, "up", config.ConsumerKey)
}

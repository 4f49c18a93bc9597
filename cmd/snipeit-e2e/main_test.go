package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "snipeit-e2e dev")
}

func TestGenerateIsReproducible(t *testing.T) {
	first, err := execute(t, "generate", "assets", "-n", "2", "--seed", "42", "-f", "json")
	require.NoError(t, err)
	second, err := execute(t, "generate", "assets", "-n", "2", "--seed", "42", "-f", "json")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var doc struct {
		Seed   uint64 `json:"seed"`
		Assets []struct {
			Tag    string `json:"tag"`
			Status string `json:"status"`
		} `json:"assets"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &doc))
	assert.Equal(t, uint64(42), doc.Seed)
	require.Len(t, doc.Assets, 2)
	assert.Len(t, doc.Assets[0].Tag, 8)
	assert.Equal(t, "Ready to Deploy", doc.Assets[0].Status)

	_, err = execute(t, "generate", "printers")
	assert.Error(t, err)
}

func TestScenarios(t *testing.T) {
	out, err := execute(t, "scenarios")
	require.NoError(t, err)
	for _, name := range []string{"login", "open-create-asset", "create-asset", "recent-activity", "search-asset", "asset-details", "asset-history", "delete-asset"} {
		assert.Contains(t, out, name)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 9)
}

func TestConfigHidesPassword(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: https://demo.snipeitapp.com")
	assert.NotContains(t, out, "password:")
}

func TestSelftest(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "selftest", "--markup", "native", "--artifacts", dir, "--report", "junit,yaml", "--asset-tag", "AB12CD34", "--no-color")
	require.NoError(t, err, out)
	assert.Contains(t, out, "All 8 scenarios passed")
	assert.FileExists(t, filepath.Join(dir, "junit.xml"))
	yml, err := os.ReadFile(filepath.Join(dir, "results.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(yml), "search-asset")
}

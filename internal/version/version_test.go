package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrings(t *testing.T) {
	oldV, oldC, oldD := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = oldV, oldC, oldD })

	Version, GitCommit, BuildDate = "v0.3.0", "abc1234", "2026-01-02"
	assert.Equal(t, "v0.3.0 (abc1234)", String())
	assert.Equal(t, "v0.3.0 (abc1234) built 2026-01-02 with "+runtime.Version(), Full())

	info := GetInfo()
	assert.Equal(t, "v0.3.0", info.Version)
	assert.Equal(t, "abc1234", info.GitCommit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	orig := BuildVersion
	t.Cleanup(func() { BuildVersion = orig })

	BuildVersion = "v1.0.0"
	var buf bytes.Buffer
	PrintBuildData(&buf)

	assert.Contains(t, buf.String(), "Build version: v1.0.0\n")
	assert.Contains(t, buf.String(), "Build date: N/A\n")
}

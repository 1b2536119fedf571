package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewCommand("Customerstore")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Print the version and exit", cmd.Short)
	assert.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Customerstore")
	assert.Contains(t, out.String(), "Version: "+Version)
}

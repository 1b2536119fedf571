package stats

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStats(t *testing.T) {
	s1 := GetStats("vtest")
	assert.NotNil(t, s1)
	assert.Equal(t, "vtest", s1.Version)
	assert.Equal(t, runtime.Version(), s1.GoVersion)
	assert.True(t, s1.Goroutines > 0)

	s2 := GetStats("vtest")
	assert.NotNil(t, s2)
	assert.True(t, s2.Time >= s1.Time)
	assert.True(t, s2.TotalAlloc >= s1.TotalAlloc)
}

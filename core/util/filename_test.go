package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentFileName(t *testing.T) {
	assert.Equal(t, "_0.tis", SegmentFileName("_0", "", "tis"))
	assert.Equal(t, "_0_1.del", SegmentFileName("_0", "1", "del"))
	assert.Equal(t, "_0", SegmentFileName("_0", "", ""))

	for _, ext := range []string{"tis", "tii", "frq", "prx", "nrm", "fnm"} {
		assert.Equal(t, SegmentFileName("_a", "", ext), SegmentFileName("_a", "", ext))
	}
}

func TestFileNameFromGeneration(t *testing.T) {
	assert.Equal(t, "", FileNameFromGeneration("_0", "del", -1))
	assert.Equal(t, "_0.del", FileNameFromGeneration("_0", "del", 0))
	assert.Equal(t, "_0_a.del", FileNameFromGeneration("_0", "del", 10))
}

func TestParseSegmentName(t *testing.T) {
	assert.Equal(t, "_3", ParseSegmentName("_3.tis"))
	assert.Equal(t, "_3", ParseSegmentName("_3"))
	assert.Equal(t, "tvx", FileExtension("_3.tvx"))
	assert.Equal(t, "", FileExtension("_3"))
	assert.Equal(t, "_z", SegmentName(35))
	assert.Equal(t, "_10", SegmentName(36))
}

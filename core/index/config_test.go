package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsweet/termshash/core/analysis"
	"github.com/ironsweet/termshash/core/codec/compressing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIndexWriterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "writer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
maxBufferedDocs: 100
ramBufferSizeMB: 4.5
termVectorsCompression: zstd
shareDocStore: true
`), 0644))

	conf, err := LoadIndexWriterConfig(path, analysis.WhitespaceAnalyzer)
	require.NoError(t, err)
	assert.Equal(t, 100, conf.MaxBufferedDocs)
	assert.Equal(t, 4.5, conf.RAMBufferSizeMB)
	assert.Equal(t, "zstd", conf.TermVectorsCompression)
	assert.True(t, conf.ShareDocStore)
	// untouched keys keep their defaults
	assert.Equal(t, DEFAULT_TERM_INDEX_INTERVAL, conf.TermIndexInterval)
	assert.Equal(t, DEFAULT_MAX_THREAD_STATES, conf.MaxThreadStates)
	assert.Equal(t, DEFAULT_MAX_TERM_LENGTH, conf.MaxTermLength)
	assert.NotNil(t, conf.Analyzer())
}

func TestLoadIndexWriterConfigDefaults(t *testing.T) {
	conf, err := LoadIndexWriterConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_MAX_BUFFERED_DOCS, conf.MaxBufferedDocs)
	assert.Equal(t, compressing.COMPRESSION_MODE_FAST.String(), conf.TermVectorsCompression)

	_, err = LoadIndexWriterConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestIndexWriterConfigValidate(t *testing.T) {
	for _, c := range []struct {
		name  string
		apply func(conf *IndexWriterConfig)
	}{
		{"termIndexInterval", func(conf *IndexWriterConfig) { conf.SetTermIndexInterval(0) }},
		{"maxBufferedDocs", func(conf *IndexWriterConfig) { conf.SetMaxBufferedDocs(1) }},
		{"ramBufferSizeMB", func(conf *IndexWriterConfig) { conf.SetRAMBufferSizeMB(0) }},
		{"ramHardLimitMB", func(conf *IndexWriterConfig) { conf.SetRAMHardLimitMB(-1) }},
		{"maxThreadStates", func(conf *IndexWriterConfig) { conf.SetMaxThreadStates(0) }},
		{"maxTermLength", func(conf *IndexWriterConfig) { conf.SetMaxTermLength(DEFAULT_MAX_TERM_LENGTH + 1) }},
		{"termVectorsCompression", func(conf *IndexWriterConfig) { conf.TermVectorsCompression = "snappy" }},
	} {
		c := c
		t.Run(c.name, func(t *testing.T) {
			conf := NewIndexWriterConfig(nil)
			require.NoError(t, conf.Validate())
			c.apply(conf)
			assert.Error(t, conf.Validate())
		})
	}

	conf := NewIndexWriterConfig(nil).
		SetMaxBufferedDocs(DISABLE_AUTO_FLUSH).
		SetRAMBufferSizeMB(DISABLE_AUTO_FLUSH)
	assert.NoError(t, conf.Validate())
}

package index

import (
	"os"

	"github.com/ironsweet/termshash/core/analysis"
	"github.com/ironsweet/termshash/core/codec/compressing"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// index/IndexWriterConfig.java

// Default value is 32.
const DEFAULT_TERM_INDEX_INTERVAL = 32

// Denotes a flush trigger is disabled.
const DISABLE_AUTO_FLUSH = -1

// Disabled by default (because the writer flushes by RAM usage by default).
const DEFAULT_MAX_BUFFERED_DOCS = DISABLE_AUTO_FLUSH

// Default value is 16 MB (which means flush when buffered docs
// consume approximately 16 MB RAM)
const DEFAULT_RAM_BUFFER_SIZE_MB = 16

// Default value is 1945.
const DEFAULT_RAM_HARD_LIMIT_MB = 1945

// The maximum number of simultaneous goroutines that may be indexing
// documents at once; if more than this many arrive they will wait
// for others to finish. Default value is 8.
const DEFAULT_MAX_THREAD_STATES = 8

// Absolute hard maximum length for a term, in bytes once encoded as
// UTF8. Longer terms are skipped.
const DEFAULT_MAX_TERM_LENGTH = util.BYTE_BLOCK_SIZE - 2

/*
Holds all the configuration of a DocumentsWriter. The yaml fields
can be loaded from a file with LoadIndexWriterConfig(); the analyzer
and the info stream are set in code.

All setter methods return IndexWriterConfig to allow chaining
settings conveniently, for example:

	conf := NewIndexWriterConfig(analyzer).
		SetMaxBufferedDocs(1000).
		SetShareDocStore(true)
*/
type IndexWriterConfig struct {
	TermIndexInterval int `yaml:"termIndexInterval"`
	// Flush after this many documents; DISABLE_AUTO_FLUSH to turn off.
	MaxBufferedDocs int `yaml:"maxBufferedDocs"`
	// Flush once the buffers hold this many MB; DISABLE_AUTO_FLUSH to turn off.
	RAMBufferSizeMB float64 `yaml:"ramBufferSizeMB"`
	// Allocations beyond this fail and abort the generation; 0 is unlimited.
	RAMHardLimitMB   float64 `yaml:"ramHardLimitMB"`
	MaxThreadStates  int     `yaml:"maxThreadStates"`
	FlushConcurrency int     `yaml:"flushConcurrency"`
	// Throttles flush writes; 0 is unlimited.
	MaxWriteMBPerSec float64 `yaml:"maxWriteMBPerSec"`
	// none, fast (lz4) or high (zstd)
	TermVectorsCompression string `yaml:"termVectorsCompression"`
	// Keep the term vectors doc store open across flushes.
	ShareDocStore bool `yaml:"shareDocStore"`
	MaxTermLength int  `yaml:"maxTermLength"`

	analyzer   analysis.Analyzer
	infoStream util.InfoStream
}

func NewIndexWriterConfig(analyzer analysis.Analyzer) *IndexWriterConfig {
	return &IndexWriterConfig{
		TermIndexInterval:      DEFAULT_TERM_INDEX_INTERVAL,
		MaxBufferedDocs:        DEFAULT_MAX_BUFFERED_DOCS,
		RAMBufferSizeMB:        DEFAULT_RAM_BUFFER_SIZE_MB,
		RAMHardLimitMB:         DEFAULT_RAM_HARD_LIMIT_MB,
		MaxThreadStates:        DEFAULT_MAX_THREAD_STATES,
		FlushConcurrency:       2,
		TermVectorsCompression: compressing.COMPRESSION_MODE_FAST.String(),
		MaxTermLength:          DEFAULT_MAX_TERM_LENGTH,
		analyzer:               analyzer,
		infoStream:             util.NO_OUTPUT,
	}
}

/*
Reads the yaml file at path over the defaults. An empty path returns
the defaults.
*/
func LoadIndexWriterConfig(path string, analyzer analysis.Analyzer) (*IndexWriterConfig, error) {
	conf := NewIndexWriterConfig(analyzer)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config file %v", path)
		}
		if err = yaml.Unmarshal(data, conf); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %v", path)
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *IndexWriterConfig) Validate() error {
	switch {
	case conf.TermIndexInterval <= 0:
		return errors.Errorf("termIndexInterval must be > 0 (got %v)", conf.TermIndexInterval)
	case conf.MaxBufferedDocs != DISABLE_AUTO_FLUSH && conf.MaxBufferedDocs < 2:
		return errors.Errorf("maxBufferedDocs must at least be 2 when enabled (got %v)", conf.MaxBufferedDocs)
	case conf.RAMBufferSizeMB != DISABLE_AUTO_FLUSH && conf.RAMBufferSizeMB <= 0:
		return errors.Errorf("ramBufferSizeMB should be > 0 or DISABLE_AUTO_FLUSH (got %v)", conf.RAMBufferSizeMB)
	case conf.RAMHardLimitMB < 0:
		return errors.Errorf("ramHardLimitMB must be >= 0 (got %v)", conf.RAMHardLimitMB)
	case conf.MaxThreadStates < 1:
		return errors.Errorf("maxThreadStates must be >= 1 (got %v)", conf.MaxThreadStates)
	case conf.MaxTermLength < 1 || conf.MaxTermLength > DEFAULT_MAX_TERM_LENGTH:
		return errors.Errorf("maxTermLength must be in [1, %v] (got %v)", DEFAULT_MAX_TERM_LENGTH, conf.MaxTermLength)
	}
	_, err := compressing.ParseCompressionMode(conf.TermVectorsCompression)
	return err
}

func (conf *IndexWriterConfig) Analyzer() analysis.Analyzer { return conf.analyzer }

func (conf *IndexWriterConfig) InfoStream() util.InfoStream { return conf.infoStream }

/*
Information about flushes and skipped terms is printed to this. Must
not be nil, but NO_OUTPUT may be used to suppress output.
*/
func (conf *IndexWriterConfig) SetInfoStream(infoStream util.InfoStream) *IndexWriterConfig {
	assert2(infoStream != nil, "Cannot set InfoStream implementation to nil. "+
		"To disable logging use util.NO_OUTPUT")
	conf.infoStream = infoStream
	return conf
}

func (conf *IndexWriterConfig) SetTermIndexInterval(interval int) *IndexWriterConfig {
	conf.TermIndexInterval = interval
	return conf
}

func (conf *IndexWriterConfig) SetMaxBufferedDocs(maxBufferedDocs int) *IndexWriterConfig {
	conf.MaxBufferedDocs = maxBufferedDocs
	return conf
}

func (conf *IndexWriterConfig) SetRAMBufferSizeMB(mb float64) *IndexWriterConfig {
	conf.RAMBufferSizeMB = mb
	return conf
}

func (conf *IndexWriterConfig) SetRAMHardLimitMB(mb float64) *IndexWriterConfig {
	conf.RAMHardLimitMB = mb
	return conf
}

func (conf *IndexWriterConfig) SetMaxThreadStates(n int) *IndexWriterConfig {
	conf.MaxThreadStates = n
	return conf
}

func (conf *IndexWriterConfig) SetFlushConcurrency(n int) *IndexWriterConfig {
	conf.FlushConcurrency = n
	return conf
}

func (conf *IndexWriterConfig) SetMaxWriteMBPerSec(mbPerSec float64) *IndexWriterConfig {
	conf.MaxWriteMBPerSec = mbPerSec
	return conf
}

func (conf *IndexWriterConfig) SetTermVectorsCompression(mode compressing.CompressionModeDefaults) *IndexWriterConfig {
	conf.TermVectorsCompression = mode.String()
	return conf
}

func (conf *IndexWriterConfig) SetShareDocStore(share bool) *IndexWriterConfig {
	conf.ShareDocStore = share
	return conf
}

func (conf *IndexWriterConfig) SetMaxTermLength(n int) *IndexWriterConfig {
	conf.MaxTermLength = n
	return conf
}

func (conf *IndexWriterConfig) ramBudgetBytes() int64 {
	return int64(conf.RAMHardLimitMB * 1024 * 1024)
}

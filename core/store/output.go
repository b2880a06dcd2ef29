package store

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ironsweet/termshash/core/util"
)

// store/IndexOutput.java

/*
Abstract base type for output to a file in a Directory. A random-access
output stream. Used for all index file writes.

Outputs are write-then-publish: the file becomes visible in its
Directory only when Close() succeeds after every write succeeded.
*/
type IndexOutput interface {
	io.Closer
	util.DataOutput
	// Returns the current position in this file, where the next write
	// will occur.
	FilePointer() int64
	// Returns the current checksum of bytes written so far
	Checksum() int64
	// Closes the output without publishing the file.
	Abort() error
}

type IndexOutputImpl struct {
	*util.DataOutputImpl
}

func NewIndexOutput(part util.DataWriter) *IndexOutputImpl {
	return &IndexOutputImpl{util.NewDataOutput(part)}
}

// store/OutputStreamIndexOutput.java

const DEFAULT_BUFFER_SIZE = 8192

/*
Where an OutputStreamIndexOutput sends its bytes. Commit() publishes
the written file; Discard() drops it.
*/
type publisher interface {
	io.Writer
	Commit() error
	Discard() error
}

/*
Implementation type for buffered IndexOutput that writes to a
publisher. The first write error is sticky: every later write fails
with it, and Close() discards the file instead of publishing it.
*/
type OutputStreamIndexOutput struct {
	*IndexOutputImpl

	name         string
	crc          *crcDigest
	os           *bufio.Writer
	target       publisher
	bytesWritten int64
	err          error
	closed       bool
}

/* Creates a new OutputStreamIndexOutput with the given buffer size. */
func newOutputStreamIndexOutput(name string, out publisher, bufferSize int) *OutputStreamIndexOutput {
	ans := &OutputStreamIndexOutput{
		name:   name,
		crc:    newCRCDigest(),
		os:     bufio.NewWriterSize(out, bufferSize),
		target: out,
	}
	ans.IndexOutputImpl = NewIndexOutput(ans)
	return ans
}

func (out *OutputStreamIndexOutput) WriteByte(b byte) error {
	if out.err != nil {
		return out.err
	}
	out.crc.Write([]byte{b})
	if out.err = out.os.WriteByte(b); out.err != nil {
		return out.err
	}
	out.bytesWritten++
	return nil
}

func (out *OutputStreamIndexOutput) WriteBytes(p []byte) error {
	if out.err != nil {
		return out.err
	}
	out.crc.Write(p)
	if _, out.err = out.os.Write(p); out.err != nil {
		return out.err
	}
	out.bytesWritten += int64(len(p))
	return nil
}

func (out *OutputStreamIndexOutput) Close() error {
	if out.closed {
		return nil
	}
	out.closed = true
	if out.err == nil {
		out.err = out.os.Flush()
	}
	if out.err != nil {
		if err := out.target.Discard(); err != nil {
			log.Warningf("Failed to discard %v: %v", out.name, err)
		}
		return out.err
	}
	return out.target.Commit()
}

func (out *OutputStreamIndexOutput) Abort() error {
	if out.closed {
		return nil
	}
	out.closed = true
	return out.target.Discard()
}

func (out *OutputStreamIndexOutput) FilePointer() int64 {
	return out.bytesWritten
}

func (out *OutputStreamIndexOutput) Checksum() int64 {
	return out.crc.Value()
}

func (out *OutputStreamIndexOutput) String() string {
	return fmt.Sprintf("OutputStreamIndexOutput(%v)", out.name)
}

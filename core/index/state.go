package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
)

// index/SegmentWriteState.java

/*
Holder for common parameters used during one flush. It is built once
per flush by the DocumentsWriter and shared by reference with every
consumer invoked for that flush.

Everything but the flushed files set is fixed at construction. The
flushed files set only grows; consumers register each output before
writing it, so a failed flush can delete exactly what it produced.
*/
type SegmentWriteState struct {
	DocWriter  *DocumentsWriter
	InfoStream util.InfoStream
	// Unowned: the lifetime of the directory is managed by the caller.
	Directory           store.Directory
	SegmentName         string
	DocStoreSegmentName string
	// Documents in this flush
	NumDocs int
	// Documents in the shared doc store, including this flush
	NumDocsInStore    int
	TermIndexInterval int
	FieldInfos        *model.FieldInfos
	// Random id shared by every file of the segment
	SegmentID uuid.UUID
	// Random id of the open doc store, shared by its files
	DocStoreID uuid.UUID
	Context   store.IOContext

	flushedFilesLock sync.Mutex
	flushedFiles     map[string]bool
}

func newSegmentWriteState(docWriter *DocumentsWriter, infoStream util.InfoStream,
	dir store.Directory, segmentName, docStoreSegmentName string,
	numDocs, numDocsInStore, termIndexInterval int,
	fieldInfos *model.FieldInfos, docStoreID uuid.UUID) *SegmentWriteState {

	return &SegmentWriteState{
		DocWriter:           docWriter,
		InfoStream:          infoStream,
		Directory:           dir,
		SegmentName:         segmentName,
		DocStoreSegmentName: docStoreSegmentName,
		NumDocs:             numDocs,
		NumDocsInStore:      numDocsInStore,
		TermIndexInterval:   termIndexInterval,
		FieldInfos:          fieldInfos,
		SegmentID:           uuid.New(),
		DocStoreID:          docStoreID,
		Context: store.NewIOContextForFlush(&store.FlushInfo{
			NumDocs: numDocs,
		}),
		flushedFiles: make(map[string]bool),
	}
}

/* Returns segmentName + "." + ext. */
func (s *SegmentWriteState) SegmentFileName(ext string) string {
	return util.SegmentFileName(s.SegmentName, "", ext)
}

/* Returns docStoreSegmentName + "." + ext. */
func (s *SegmentWriteState) DocStoreFileName(ext string) string {
	return util.SegmentFileName(s.DocStoreSegmentName, "", ext)
}

func (s *SegmentWriteState) AddFlushedFile(name string) {
	s.flushedFilesLock.Lock()
	defer s.flushedFilesLock.Unlock()
	s.flushedFiles[name] = true
}

/* Returns the files registered so far, sorted. */
func (s *SegmentWriteState) FlushedFiles() []string {
	s.flushedFilesLock.Lock()
	defer s.flushedFilesLock.Unlock()
	names := make([]string, 0, len(s.flushedFiles))
	for name := range s.flushedFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/*
Registers the file as flushed, then creates it. Registration comes
first so that cleanup also covers outputs that fail half-way.
*/
func (s *SegmentWriteState) CreateOutput(name string) (store.IndexOutput, error) {
	s.AddFlushedFile(name)
	return s.Directory.CreateOutput(name, s.Context)
}

func (s *SegmentWriteState) String() string {
	return fmt.Sprintf("SegmentWriteState(seg=%v docStore=%v numDocs=%v numDocsInStore=%v)",
		s.SegmentName, s.DocStoreSegmentName, s.NumDocs, s.NumDocsInStore)
}

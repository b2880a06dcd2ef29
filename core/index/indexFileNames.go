package index

// index/IndexFileNames.java

const (
	// Extension of the field infos file
	FIELD_INFOS_EXTENSION = "fnm"
	// Extension of the norms file
	NORMS_EXTENSION = "nrm"
	// Extension of the deleted documents file
	DELETES_EXTENSION = "del"
	// Extension of the segment commit marker, written last
	SEGMENT_INFO_EXTENSION = "si"
	// Extension of the vectors index file, in the doc store
	VECTORS_INDEX_EXTENSION = "tvx"
	// Extension of the vectors documents file, in the doc store
	VECTORS_DOCUMENTS_EXTENSION = "tvd"
)

const (
	FIELD_INFOS_CODEC    = "Lucene29FieldInfos"
	NORMS_CODEC          = "Lucene29Norms"
	DELETES_CODEC        = "Lucene29Deletes"
	SEGMENT_INFO_CODEC   = "Lucene29SegmentInfo"
	VECTORS_INDEX_CODEC  = "Lucene29VectorsIndex"
	VECTORS_DOCS_CODEC   = "Lucene29VectorsDocuments"
	FORMAT_VERSION_START = 0
	FORMAT_VERSION       = FORMAT_VERSION_START
)

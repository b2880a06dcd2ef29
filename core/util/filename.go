package util

import (
	"fmt"
	"strconv"
	"strings"
)

// index/IndexFileNames.java

/*
Returns a file name that includes the given segment name, suffix and
extension. The format is <name>[_<suffix>][.<ext>]. The function is
pure: it only joins its arguments.
*/
func SegmentFileName(name, suffix, ext string) string {
	if len(ext) == 0 && len(suffix) == 0 {
		return name
	}
	assert2(len(ext) == 0 || ext[0] != '.', "extension must not start with '.': %v", ext)
	var b strings.Builder
	b.Grow(len(name) + len(suffix) + len(ext) + 2)
	b.WriteString(name)
	if len(suffix) > 0 {
		b.WriteByte('_')
		b.WriteString(suffix)
	}
	if len(ext) > 0 {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}

/*
Computes the full file name from base, extension and generation. If
the generation is -1, the empty string is returned; if it is 0, the
file name is returned unchanged.
*/
func FileNameFromGeneration(base, ext string, gen int64) string {
	switch {
	case gen == -1:
		return ""
	case gen == 0:
		return SegmentFileName(base, "", ext)
	default:
		return SegmentFileName(fmt.Sprintf("%v_%v", base, strconv.FormatInt(gen, 36)), "", ext)
	}
}

/* Returns the segment name part of the file name, e.g. "_3" for "_3.tis". */
func ParseSegmentName(filename string) string {
	if idx := strings.Index(filename, "."); idx != -1 {
		return filename[:idx]
	}
	return filename
}

/* Returns the extension of the file name without the leading dot. */
func FileExtension(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx != -1 {
		return filename[idx+1:]
	}
	return ""
}

/* Segment names are "_" followed by the base 36 counter. */
func SegmentName(counter int64) string {
	return "_" + strconv.FormatInt(counter, 36)
}

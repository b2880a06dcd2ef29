package util

import (
	"bytes"
)

/* An empty byte slice for convenience */
var EMPTY_BYTES = []byte{}

/*
Terms are compared as raw UTF8 bytes, which sorts them in unicode
code point order.
*/
func UTF8SortedAsUnicodeLess(aBytes, bBytes []byte) bool {
	return bytes.Compare(aBytes, bBytes) < 0
}

type BytesRefs [][]byte

func (br BytesRefs) Len() int           { return len(br) }
func (br BytesRefs) Less(i, j int) bool { return UTF8SortedAsUnicodeLess(br[i], br[j]) }
func (br BytesRefs) Swap(i, j int)      { br[i], br[j] = br[j], br[i] }

// util/StringHelper.java

/*
Returns the length of the common prefix of the two byte sequences,
used to prefix-code sorted terms.
*/
func BytesDifference(left, right []byte) int {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		if left[i] != right[i] {
			return i
		}
	}
	return n
}

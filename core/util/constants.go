package util

// util/Constants.java

/* Format version recorded into every segment commit marker. */
const VERSION = "1.0"

// util/RamUsageEstimator.java

const (
	NUM_BYTES_INT32 = 4
	NUM_BYTES_INT   = 8
	NUM_BYTES_LONG  = 8

	/* Number of bytes to represent an object reference */
	NUM_BYTES_OBJECT_REF = 8
)

package util

import (
	"math"
)

// util/SmallFloat.java

/*
floatToByte(b, mantissaBits=3, zeroExponent=15)
smallest non-zero value = 5.820766E-10
largest value = 7.5161928E9
epsilon = 0.125
*/
func FloatToByte315(f float32) byte {
	bits := int32(math.Float32bits(f))
	smallfloat := bits >> (24 - 3)
	if smallfloat <= ((63 - 15) << 3) {
		if bits <= 0 {
			return 0
		}
		return 1
	}
	if smallfloat >= ((63-15)<<3)+0x100 {
		return 255
	}
	return byte(smallfloat - ((63 - 15) << 3))
}

/* byteToFloat(b, mantissaBits=3, zeroExponent=15) */
func Byte315ToFloat(b byte) float32 {
	if b == 0 {
		return 0
	}
	bits := (uint32(b) << (24 - 3)) + ((63 - 15) << 24)
	return math.Float32frombits(bits)
}

// Package packet implements the video packet algebra: encoded, network and
// image packet variants, plus the lossless conversions between pipeline
// stages.
package packet

import "fmt"

// ID is a half-open byte-span interval [I1, I2) identifying a frame within
// its source. It exists because one natural source representation is RTP
// sequencing and another is a file offset, and both are naturally expressed
// as half-open integer ranges.
type ID struct {
	I1 int64
	I2 int64
}

// Valid reports whether the interval respects I1 <= I2.
func (id ID) Valid() bool {
	return id.I1 <= id.I2
}

func (id ID) String() string {
	return fmt.Sprintf("[%d, %d)", id.I1, id.I2)
}

// Len returns the span's byte length.
func (id ID) Len() int64 {
	return id.I2 - id.I1
}

package fingerprint

import (
	"math"
	"strconv"
)

// Bucket parameters of the quantized markers.
const (
	burstUnit   = 610
	burstBucket = 600

	totalUnit   = 10000
	totalBucket = 10000

	uniqueUnit   = 2
	uniqueBucket = 2

	countUnit   = 15
	countBucket = 15
)

// Quantize maps x into the band of width bucket whose boundaries sit at
// multiples of unit: (x/unit + 1) * bucket, with truncating division.
// The result is always a positive multiple of bucket.
func Quantize(x, unit, bucket int) int {
	return (x/unit + 1) * bucket
}

// QuantizeRatio rounds a packet ratio up to the next 5% step and formats it
// with two decimals.
func QuantizeRatio(ratio float64) string {
	steps := math.Floor((ratio-0.01)*100/5 + 1)
	return strconv.FormatFloat(steps*5/100, 'f', 2, 64)
}

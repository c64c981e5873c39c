package soap

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/go-uuid"

	"upnpfuzz/internal/mutate"
)

var dateRangeStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
var dateRangeEnd = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

// generateValue produces the bytes for one argument's value following
// the decision order: allowed values, then declared default, then a
// type-directed random draw, then an opaque fallback for unknown
// types.
func generateValue(rng *mutate.Rand, arg Argument) []byte {
	if len(arg.Allowed) > 0 {
		return []byte(arg.Allowed[rng.IntN(len(arg.Allowed))])
	}
	if arg.Default != "" {
		return []byte(arg.Default)
	}
	return []byte(randomByType(rng, arg.DataType))
}

func randomByType(rng *mutate.Rand, dataType string) string {
	switch dataType {
	case "ui1":
		return fmt.Sprintf("%d", rng.Uint64N(1<<8))
	case "ui2":
		return fmt.Sprintf("%d", rng.Uint64N(1<<16))
	case "ui4":
		return fmt.Sprintf("%d", rng.Uint64N(1<<32))
	case "i1":
		return fmt.Sprintf("%d", randomSigned(rng, 8))
	case "i2":
		return fmt.Sprintf("%d", randomSigned(rng, 16))
	case "i4":
		return fmt.Sprintf("%d", randomSigned(rng, 32))
	case "boolean":
		values := []string{"0", "1", "true", "false", "yes", "no"}
		return values[rng.IntN(len(values))]
	case "string":
		return "192.168.1.4"
	case "number", "fixed.14.14", "float":
		return fmt.Sprintf("%g", randomReal(rng))
	case "char":
		return "A"
	case "date":
		return randomDate(rng).Format("2006-01-02")
	case "dateTime":
		return randomDateTime(rng)
	case "dateTime.tz":
		return randomDateTimeTZ(rng)
	case "time":
		return randomTime(rng, true)
	case "time.tz":
		return randomTime(rng, true)
	case "bin.base64":
		return base64.StdEncoding.EncodeToString(filler(rng))
	case "bin.hex":
		return hex.EncodeToString(filler(rng))
	case "uri":
		return "http://192.168.1.4:8080/fuzz"
	case "uuid":
		id, err := uuid.GenerateUUID()
		if err != nil {
			return "00000000-0000-4000-8000-000000000000"
		}
		// GenerateUUID returns raw random bytes; stamp the version-4
		// nibble and the RFC 4122 variant so the value is a valid v4 UUID.
		b := []byte(id)
		b[14] = '4'
		b[19] = "89ab"[b[19]%4]
		return string(b)
	default:
		return string(filler(rng))
	}
}

// randomSigned returns a uniformly chosen signed integer within the
// two's-complement range of an n-bit field.
func randomSigned(rng *mutate.Rand, n int) int64 {
	span := int64(1) << uint(n)
	min := -(int64(1) << uint(n-1))
	return min + rng.Int64N(span)
}

// randomReal returns a uniformly chosen real number in ±1.8e30.
func randomReal(rng *mutate.Rand) float64 {
	const bound = 1.8e30
	v := rng.Float64()*2*bound - bound
	return v
}

// filler returns between 0 and 255 bytes of the canonical fuzz filler
// character, used both as the unknown-type fallback and as the source
// bytes for bin.base64/bin.hex.
func filler(rng *mutate.Rand) []byte {
	n := rng.IntN(256)
	out := make([]byte, n)
	for i := range out {
		out[i] = 'A'
	}
	return out
}

func randomDate(rng *mutate.Rand) time.Time {
	days := int(dateRangeEnd.Sub(dateRangeStart).Hours() / 24)
	offset := rng.IntN(days + 1)
	return dateRangeStart.AddDate(0, 0, offset)
}

func randomDateTime(rng *mutate.Rand) string {
	s := randomDate(rng).Format("2006-01-02")
	if rng.Bool() {
		s += "T" + clockString(rng)
	}
	return s
}

func randomDateTimeTZ(rng *mutate.Rand) string {
	s := randomDate(rng).Format("2006-01-02")
	if rng.Bool() {
		s += "T" + clockString(rng)
	}
	if rng.Bool() {
		s += tzOffsetString(rng)
	}
	return s
}

func randomTime(rng *mutate.Rand, allowOffset bool) string {
	s := clockString(rng)
	if allowOffset && rng.Bool() {
		s += tzOffsetString(rng)
	}
	return s
}

func clockString(rng *mutate.Rand) string {
	h := rng.IntN(24)
	m := rng.IntN(60)
	sec := rng.IntN(60)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// tzOffsetString returns a ±hh:mm offset with hours in -12..14 and
// minutes drawn from the quarter-hour set.
func tzOffsetString(rng *mutate.Rand) string {
	hours := rng.IntN(27) - 12 // -12..14
	minuteChoices := []int{0, 15, 30, 45}
	minutes := minuteChoices[rng.IntN(len(minuteChoices))]

	sign := "+"
	if hours < 0 {
		sign = "-"
		hours = -hours
	}
	return fmt.Sprintf("%s%02d:%02d", sign, hours, minutes)
}

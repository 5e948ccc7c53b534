package llsd

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the textual form used for dates.
const DateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// AsString converts scalars to text. Containers, binary and undefined yield
// the empty string, as does false.
func AsString(v Value) string {
	switch x := orUndefined(v).(type) {
	case Boolean:
		if x {
			return "true"
		}
		return ""
	case Integer:
		return strconv.FormatInt(int64(x), 10)
	case Real:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case String:
		return string(x)
	case UUID:
		return x.String()
	case Date:
		return time.Time(x).UTC().Format(DateLayout)
	case URI:
		return string(x)
	default:
		return ""
	}
}

// AsInteger converts v to an integer. Reals are truncated toward zero and
// strings are parsed as numbers; anything unconvertible yields 0.
func AsInteger(v Value) int32 {
	switch x := orUndefined(v).(type) {
	case Boolean:
		if x {
			return 1
		}
		return 0
	case Integer:
		return int32(x)
	case Real:
		return truncate(float64(x))
	case String:
		return truncate(parseReal(string(x)))
	case Date:
		return truncate(float64(time.Time(x).Unix()))
	default:
		return 0
	}
}

// AsReal converts v to a float. Dates yield seconds since the Unix epoch.
func AsReal(v Value) float64 {
	switch x := orUndefined(v).(type) {
	case Boolean:
		if x {
			return 1
		}
		return 0
	case Integer:
		return float64(x)
	case Real:
		return float64(x)
	case String:
		return parseReal(string(x))
	case Date:
		t := time.Time(x)
		return float64(t.UnixNano()) / float64(time.Second)
	default:
		return 0
	}
}

// AsBoolean reports the truth of v: non-zero numbers and non-empty strings are
// true.
func AsBoolean(v Value) bool {
	switch x := orUndefined(v).(type) {
	case Boolean:
		return bool(x)
	case Integer:
		return x != 0
	case Real:
		return x != 0 && !math.IsNaN(float64(x))
	case String:
		return x != ""
	default:
		return false
	}
}

// AsBinary returns the bytes of a Binary value and nil for everything else.
func AsBinary(v Value) []byte {
	if b, ok := orUndefined(v).(Binary); ok {
		return b
	}
	return nil
}

// AsUUID returns the identifier held by v, parsing strings. Anything else
// yields uuid.Nil.
func AsUUID(v Value) uuid.UUID {
	switch x := orUndefined(v).(type) {
	case UUID:
		return uuid.UUID(x)
	case String:
		id, err := uuid.Parse(strings.TrimSpace(string(x)))
		if err != nil {
			return uuid.Nil
		}
		return id
	default:
		return uuid.Nil
	}
}

// AsDate returns the time held by v. Strings are parsed in RFC 3339 form and
// numbers are taken as seconds since the epoch.
func AsDate(v Value) time.Time {
	switch x := orUndefined(v).(type) {
	case Date:
		return time.Time(x)
	case String:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(x)))
		if err != nil {
			return time.Time{}
		}
		return t
	case Integer:
		return time.Unix(int64(x), 0).UTC()
	case Real:
		sec, frac := math.Modf(float64(x))
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
	default:
		return time.Time{}
	}
}

func parseReal(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func truncate(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(f)
	}
}

package results

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errRangeUnsatisfiable marks a well-formed range lying entirely outside the
// artifact.
var errRangeUnsatisfiable = errors.New("range not satisfiable")

// byteRange is one inclusive byte span of an artifact.
type byteRange struct {
	start int64
	end   int64
}

func (b byteRange) length() int64 {
	return b.end - b.start + 1
}

func (b byteRange) contentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", b.start, b.end, size)
}

// parseByteRange interprets a Range header against an artifact of size
// bytes. Absent or malformed headers return ok=false and callers serve the
// full body. Multi-range requests collapse to their first span; segment
// players only ever request one.
func parseByteRange(header string, size int64) (byteRange, bool, error) {
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return byteRange{}, false, nil
	}
	if first, _, multi := strings.Cut(spec, ","); multi {
		spec = strings.TrimSpace(first)
	}

	startStr, endStr, dash := strings.Cut(spec, "-")
	if !dash {
		return byteRange{}, false, nil
	}

	if startStr == "" {
		// Suffix form: the final N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, false, nil
		}
		start := size - n
		if start < 0 {
			start = 0
		}
		return byteRange{start: start, end: size - 1}, true, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, false, nil
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return byteRange{}, false, nil
		}
		if end >= size {
			end = size - 1
		}
	}

	if start >= size || start > end {
		return byteRange{}, true, errRangeUnsatisfiable
	}
	return byteRange{start: start, end: end}, true, nil
}

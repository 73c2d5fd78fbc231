package introspect

import (
	"fmt"
	"strconv"
	"time"
)

// formatValue renders a scanned database value as text. NULLs become the
// literal "NULL" so snippets and samples can tell them from empty strings.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

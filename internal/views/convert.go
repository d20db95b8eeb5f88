package views

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
)

// toRecords maps decoded JSON objects onto records using f.
func toRecords(items []map[string]any, f Fields, loc *time.Location) []records.Record {
	out := make([]records.Record, 0, len(items))
	for _, it := range items {
		r := records.Record{
			ID:        str(it[f.ID]),
			Timestamp: records.ParseTimestamp(str(it[f.Timestamp]), loc),
			Category:  str(it[f.Category]),
		}
		if f.Value != "" {
			r.Value = number(it[f.Value])
		}
		if f.Closed != "" {
			r.Closed = str(it[f.Closed]) != ""
		}
		if len(f.Labels) > 0 {
			r.Labels = make(map[string]string, len(f.Labels))
			for _, l := range f.Labels {
				r.Labels[l] = str(it[l])
			}
		}
		out = append(out, r)
	}
	return out
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func number(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

package compliance

import "time"

// LatestPerEmployee keeps one record per employee: the one expiring last.
// Records without an expiry fall back to their creation time, then to the
// zero time. On ties the record seen later in the input wins. Groups come
// out in order of first appearance.
func LatestPerEmployee(records []Record) []Record {
	index := make(map[int64]int, len(records))
	out := make([]Record, 0, len(records))

	for _, r := range records {
		pos, seen := index[r.EmployeeID]
		if !seen {
			index[r.EmployeeID] = len(out)
			out = append(out, r)
			continue
		}
		if !recencyKey(r).Before(recencyKey(out[pos])) {
			out[pos] = r
		}
	}

	return out
}

func recencyKey(r Record) time.Time {
	switch {
	case r.ExpiresAt != nil:
		return *r.ExpiresAt
	case r.CreatedAt != nil:
		return *r.CreatedAt
	default:
		return time.Time{}
	}
}

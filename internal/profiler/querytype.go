package profiler

import "strings"

const QueryTypeOther = "OTHER"

// Checked in order; the first matching prefix wins.
var queryTypes = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP"}

// QueryType tags a statement by its leading SQL verb, case-insensitively.
func QueryType(query string) string {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, verb := range queryTypes {
		if strings.HasPrefix(q, verb) {
			return verb
		}
	}
	return QueryTypeOther
}

// IsSlow applies the slow-query rule: elapsed seconds strictly above the threshold.
func IsSlow(elapsedSeconds float64, thresholdMs int) bool {
	return elapsedSeconds > float64(thresholdMs)/1000
}

// OverallStatus is "warning" for more than 5 slow queries or more than 100 queries.
func OverallStatus(slowCount, totalCount int) string {
	if slowCount > 5 || totalCount > 100 {
		return "warning"
	}
	return "good"
}

// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter returns a filter matching q as a case-insensitive substring of any
// of fields. Regex metacharacters in q are escaped. A blank q yields an
// empty filter that matches everything.
func Filter(q string, fields ...string) bson.M {
	q = strings.TrimSpace(q)
	if q == "" || len(fields) == 0 {
		return bson.M{}
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	if len(fields) == 1 {
		return bson.M{fields[0]: rx}
	}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: rx})
	}
	return bson.M{"$or": or}
}

// LooksLikeEmail reports whether q is probably an email fragment, in which
// case callers may add their email field to the searched set.
func LooksLikeEmail(q string) bool {
	return strings.Contains(q, "@")
}

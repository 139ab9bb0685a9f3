package common

import (
	"net/url"

	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// SelectionFromQuery reads line, year and quarter from the query string.
// ok is false when none of them is present.
func SelectionFromQuery(q url.Values) (sel pipeline.Selection, ok bool) {
	ok = q.Has("line") || q.Has("year") || q.Has("quarter")
	sel = pipeline.Selection{
		Line:    q.Get("line"),
		Year:    q.Get("year"),
		Quarter: q.Get("quarter"),
	}
	return sel.Normalize(), ok
}

// SelectionQuery encodes sel for a link, leaving out unset filters.
func SelectionQuery(sel pipeline.Selection) string {
	sel = sel.Normalize()
	q := url.Values{}
	if sel.Line != pipeline.AllLines {
		q.Set("line", sel.Line)
	}
	if sel.Year != pipeline.AllYears {
		q.Set("year", sel.Year)
	}
	if sel.Quarter != pipeline.AllQuarters {
		q.Set("quarter", sel.Quarter)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

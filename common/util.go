package common

import "fmt"

// Assert panics when a caller has violated a structural precondition
// (inserting into a full page, removing at an out-of-range index). These are
// programmer bugs, never environment failures, so they are not returned as
// error values.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

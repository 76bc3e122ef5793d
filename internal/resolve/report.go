package resolve

import "github.com/quiltsoft/stitch/internal/identity"

// Report surfaces the lossy outcomes of one churn pass.
//
// Delivery semantics stay lossy-but-available: duplicates overwrite, absent
// singles deliver nil, partially resolvable arrays shorten. The report
// exists so that strict consumers can detect those outcomes instead of
// inferring them from silence.
type Report struct {
	// Resolved counts registrations whose callbacks received a value
	// (arrays count as resolved even when shortened; see Truncated).
	Resolved int

	// Unresolved counts single registrations delivered the absent signal.
	Unresolved int

	// Duplicates lists every identity that was overwritten in the cache
	// during the decode pass, in overwrite order.
	Duplicates []identity.Key

	// Missing lists every target identity that was absent from the cache
	// at churn time, including absent members of arrays.
	Missing []identity.Key

	// Truncated lists the composite keys of array registrations that
	// delivered fewer members than were requested.
	Truncated []string
}

// Clean reports whether the churn had no lossy outcomes at all.
func (r *Report) Clean() bool {
	return r.Unresolved == 0 &&
		len(r.Duplicates) == 0 &&
		len(r.Missing) == 0 &&
		len(r.Truncated) == 0
}

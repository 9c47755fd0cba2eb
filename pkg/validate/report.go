package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Reason classifies why an entry was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonUnknownInterface Reason = "unknown_interface"
	ReasonLinkLocal        Reason = "link_local"
	ReasonInvalidMAC       Reason = "invalid_mac"
	ReasonOutsideSubnet    Reason = "outside_subnet"
	ReasonWrongFamily      Reason = "wrong_family"
)

// Reasons lists every rejection reason in a stable order.
var Reasons = []Reason{
	ReasonUnknownInterface,
	ReasonLinkLocal,
	ReasonInvalidMAC,
	ReasonOutsideSubnet,
	ReasonWrongFamily,
}

// Report counts the outcome of one validation pass.
type Report struct {
	Accepted int
	Rejected map[Reason]int
}

func newReport() *Report {
	return &Report{Rejected: make(map[Reason]int)}
}

func (r *Report) reject(reason Reason) {
	r.Rejected[reason]++
}

// TotalRejected returns the number of rejected entries.
func (r *Report) TotalRejected() int {
	n := 0
	for _, c := range r.Rejected {
		n += c
	}
	return n
}

// String renders "accepted=3 rejected=2 (invalid_mac=1 unknown_interface=1)".
func (r *Report) String() string {
	if r.TotalRejected() == 0 {
		return fmt.Sprintf("accepted=%d rejected=0", r.Accepted)
	}
	parts := make([]string, 0, len(r.Rejected))
	for reason, n := range r.Rejected {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, n))
		}
	}
	sort.Strings(parts)
	return fmt.Sprintf("accepted=%d rejected=%d (%s)", r.Accepted, r.TotalRejected(), strings.Join(parts, " "))
}

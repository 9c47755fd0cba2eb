package config

import (
	"time"

	"github.com/newtron-network/newtscrape/pkg/model"
)

// Policy answers collection eligibility questions from the configuration:
// per-kind exclusions and declared downtime windows. It is read-only after
// construction.
type Policy struct {
	exclude  map[model.Kind]map[int]struct{}
	downtime map[int][]DowntimeWindow
	now      func() time.Time
}

// NewPolicy builds a Policy from cfg.
func NewPolicy(cfg *Config) *Policy {
	p := &Policy{
		exclude:  make(map[model.Kind]map[int]struct{}),
		downtime: make(map[int][]DowntimeWindow),
		now:      time.Now,
	}
	for kind, ids := range cfg.Exclude {
		set := make(map[int]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		p.exclude[model.Kind(kind)] = set
	}
	for _, w := range cfg.Downtime {
		p.downtime[w.Device] = append(p.downtime[w.Device], w)
	}
	return p
}

// WithClock replaces the time source. Intended for tests.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// IsCollectionEnabled reports whether kind may be collected from deviceID.
func (p *Policy) IsCollectionEnabled(deviceID int, kind model.Kind) bool {
	_, excluded := p.exclude[kind][deviceID]
	return !excluded
}

// IsInDowntime reports whether deviceID is inside a declared window.
// Windows are inclusive of start and exclusive of end.
func (p *Policy) IsInDowntime(deviceID int) bool {
	now := p.now()
	for _, w := range p.downtime[deviceID] {
		if !now.Before(w.Start) && now.Before(w.End) {
			return true
		}
	}
	return false
}

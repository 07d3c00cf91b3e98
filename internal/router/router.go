package router

import (
	"sort"
	"strings"

	"github.com/fabian4/schnecke/internal/config"
)

// Table is an immutable virtual-host lookup table. It is safe for concurrent
// use because nothing mutates it after New.
type Table struct {
	byHost config.HostMap
}

func New(hosts config.HostMap) *Table {
	t := &Table{byHost: make(config.HostMap, len(hosts))}
	for name, hp := range hosts {
		t.byHost[name] = hp
	}
	return t
}

// Match looks up the profile for a Host header value. Anything from the first
// ':' on is ignored; the remaining name must match exactly.
func (t *Table) Match(host string) (config.HostProfile, bool) {
	hp, ok := t.byHost[hostOnly(host)]
	return hp, ok
}

func (t *Table) Len() int { return len(t.byHost) }

// Hosts returns the configured host names in sorted order.
func (t *Table) Hosts() []string {
	out := make([]string, 0, len(t.byHost))
	for h := range t.byHost {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func hostOnly(h string) string {
	if i := strings.IndexByte(h, ':'); i >= 0 {
		return h[:i]
	}
	return h
}

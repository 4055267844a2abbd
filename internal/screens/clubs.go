package screens

import (
	"fmt"
	"strings"
)

// DefaultClubs is the club list offered when none is configured.
var DefaultClubs = []string{"CSEA", "AlgoGeeks", "Glugot", "ARVR", "CSI", "IEEE"}

// ClubEntry is one selectable club.
type ClubEntry struct {
	Name string `json:"name"`
	Open Nav    `json:"open"`
}

// Clubs is the club selection screen.
type Clubs struct {
	names []string
}

// NewClubs builds the selection screen. Blank and repeated names are dropped.
func NewClubs(names []string) *Clubs {
	if len(names) == 0 {
		names = DefaultClubs
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return &Clubs{names: out}
}

// List returns the clubs with the navigation to each dashboard.
func (c *Clubs) List() []ClubEntry {
	entries := make([]ClubEntry, 0, len(c.names))
	for _, n := range c.names {
		entries = append(entries, ClubEntry{Name: n, Open: Nav{Route: RouteDashboard, Club: n}})
	}
	return entries
}

// Choose returns the navigation to club's dashboard.
func (c *Clubs) Choose(club string) (Nav, error) {
	for _, n := range c.names {
		if n == club {
			return Nav{Route: RouteDashboard, Club: n}, nil
		}
	}
	return Nav{}, fmt.Errorf("unknown club %q", club)
}

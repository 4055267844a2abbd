package screens

import "github.com/google/uuid"

// fetchTicket tags an in-flight report fetch with the club that was active
// when it was issued.
type fetchTicket struct {
	club string
	id   string
}

// activeClub tracks which club a screen shows, the newest fetch issued for it
// and how many fetches are still outstanding.
// Callers hold the owning controller's lock.
type activeClub struct {
	club    string
	latest  string
	pending int
}

// issue switches to club and returns the ticket for a new fetch. The boolean
// reports whether the club changed.
func (a *activeClub) issue(club string) (fetchTicket, bool) {
	changed := a.club != club
	t := fetchTicket{club: club, id: uuid.NewString()}
	a.club = club
	a.latest = t.id
	a.pending++
	return t, changed
}

// finish records the completion of t and reports whether its response may be
// applied. Only the newest fetch for the shown club applies; an older one,
// for this club or another, is stale and dropped.
func (a *activeClub) finish(t fetchTicket) bool {
	if a.pending > 0 {
		a.pending--
	}
	return t.club == a.club && t.id == a.latest
}

// invalidate makes every outstanding fetch stale. Used after a local change
// that a response issued earlier would not reflect.
func (a *activeClub) invalidate() {
	a.latest = uuid.NewString()
}

// loading reports whether any fetch is still outstanding.
func (a *activeClub) loading() bool {
	return a.pending > 0
}

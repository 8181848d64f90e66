package notify

// History records which (title, body) pairs have been sent. A title maps
// to the set of bodies sent under it.
type History map[string]map[string]struct{}

// NewHistory returns an empty History.
func NewHistory() History {
	return make(History)
}

// Add records a sent message.
func (h History) Add(title, body string) {
	bodies, ok := h[title]
	if !ok {
		bodies = make(map[string]struct{})
		h[title] = bodies
	}
	bodies[body] = struct{}{}
}

// AlreadySent reports whether the exact (title, body) pair is recorded.
func (h History) AlreadySent(title, body string) bool {
	_, ok := h[title][body]
	return ok
}

// Len returns the number of recorded messages.
func (h History) Len() int {
	n := 0
	for _, bodies := range h {
		n += len(bodies)
	}
	return n
}

// Clone returns a deep copy.
func (h History) Clone() History {
	out := make(History, len(h))
	for title, bodies := range h {
		cp := make(map[string]struct{}, len(bodies))
		for b := range bodies {
			cp[b] = struct{}{}
		}
		out[title] = cp
	}
	return out
}

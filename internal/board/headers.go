package board

// headers is an insertion-ordered PGN tag set.
type headers struct {
	keys   []string
	values map[string]string
}

func (h *headers) set(key, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

func (h *headers) get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

func (h *headers) remove(key string) bool {
	if _, ok := h.values[key]; !ok {
		return false
	}
	delete(h.values, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i:i], h.keys[i+1:]...)
			break
		}
	}
	return true
}

func (h *headers) len() int {
	return len(h.keys)
}

func (h *headers) clone() headers {
	c := headers{keys: append([]string(nil), h.keys...)}
	if h.values != nil {
		c.values = make(map[string]string, len(h.values))
		for k, v := range h.values {
			c.values[k] = v
		}
	}
	return c
}

// Header sets the given key/value pairs (a trailing unpaired key is
// ignored) and returns a copy of all headers.
func (g *Game) Header(kv ...string) map[string]string {
	for i := 0; i+1 < len(kv); i += 2 {
		g.headers.set(kv[i], kv[i+1])
	}

	out := make(map[string]string, g.headers.len())
	for _, k := range g.headers.keys {
		out[k] = g.headers.values[k]
	}
	return out
}

// HeaderKeys returns the header names in the order they were first set.
func (g *Game) HeaderKeys() []string {
	return append([]string(nil), g.headers.keys...)
}

// RemoveHeader deletes a header and reports whether it existed.
func (g *Game) RemoveHeader(key string) bool {
	return g.headers.remove(key)
}

package models

// PageRequest describes one page attempt of a logical fetch. It is a value
// type: the controller derives the next attempt with WithPage instead of
// mutating shared state, so concurrent batch units can never alias.
type PageRequest struct {
	FromDate  string // 8-digit yyyymmdd
	ToDate    string // 8-digit yyyymmdd
	Scrip     string // exchange-native instrument identifier, "" for all
	Page      int
	Overrides map[string]string // caller-supplied query params, win over defaults
}

// WithPage returns a copy of the request pointed at a different page.
// The overrides map is copied, never shared.
func (r PageRequest) WithPage(page int) PageRequest {
	next := r
	next.Page = page
	next.Overrides = copyOverrides(r.Overrides)
	return next
}

// Override returns the caller-supplied value for a query parameter, or the
// given default when the caller did not set one.
func (r PageRequest) Override(key, def string) string {
	if v, ok := r.Overrides[key]; ok {
		return v
	}
	return def
}

func copyOverrides(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

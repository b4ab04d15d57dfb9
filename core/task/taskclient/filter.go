package taskclient

import (
	"net/url"
	"strings"
)

// Filter narrows ListTasks. Empty fields are not sent.
type Filter struct {
	Status   string
	Priority string
	Search   string
}

// query renders the filter with a leading "?", or "" when nothing is set.
// Keys keep a fixed status, priority, search order.
func (f Filter) query() string {
	var b strings.Builder
	add := func(key, value string) {
		if value == "" {
			return
		}
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	add("status", f.Status)
	add("priority", f.Priority)
	add("search", f.Search)
	return b.String()
}

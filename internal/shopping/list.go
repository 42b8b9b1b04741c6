// Package shopping defines the sample document synchronized by the cfgsync
// command: a shopping list with item counts and a price.
package shopping

import (
	"sort"
	"strings"
)

// List is a shopping list document.
type List struct {
	Items map[string]int `json:"items" toml:"items"`
	Price float64        `json:"price" toml:"price"`
}

// New returns an empty list with an initialized item map.
func New() List {
	return List{Items: map[string]int{}}
}

// Add increments the count of name by one. Surrounding whitespace is
// trimmed and blank names are ignored. It reports whether the list changed.
func (l *List) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	if l.Items == nil {
		l.Items = map[string]int{}
	}

	l.Items[name]++

	return true
}

// Total returns the sum of all item counts.
func (l List) Total() int {
	total := 0
	for _, n := range l.Items {
		total += n
	}

	return total
}

// Names returns the item names in sorted order.
func (l List) Names() []string {
	names := make([]string, 0, len(l.Items))
	for n := range l.Items {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

package domain

import "strings"

// Person is a single catalog record
type Person struct {
	First string
	Last  string
}

// FullName returns the display form of the person
func (p Person) FullName() string {
	return p.First + " " + p.Last
}

// Matches reports whether the person matches the query
func (p Person) Matches(query string) bool {
	return Matches(p, query)
}

// Catalog is the ordered, read-only record set the pipeline filters.
// It is built once at startup and never mutated afterwards.
type Catalog struct {
	people []Person
}

// NewCatalog copies people into a new catalog, keeping their order
func NewCatalog(people []Person) *Catalog {
	owned := make([]Person, len(people))
	copy(owned, people)
	return &Catalog{people: owned}
}

// DefaultCatalog returns the built-in list of names
func DefaultCatalog() *Catalog {
	return NewCatalog([]Person{
		{First: "Kevin", Last: "Yankam"},
		{First: "Emmanuel", Last: "Macron"},
		{First: "Johnny", Last: "Bravo"},
		{First: "Barack", Last: "Obama"},
		{First: "Julien", Last: "Sizorn"},
		{First: "Pierre", Last: "Issartel"},
		{First: "Omar", Last: "Arab"},
		{First: "Laetitia", Last: "Casta"},
		{First: "Celine", Last: "Dion"},
		{First: "Samuel", Last: "Eto"},
	})
}

// Len returns the number of records
func (c *Catalog) Len() int {
	return len(c.people)
}

// All returns pointers to every record in catalog order.
// Callers must treat the records as read-only.
func (c *Catalog) All() []*Person {
	out := make([]*Person, len(c.people))
	for i := range c.people {
		out[i] = &c.people[i]
	}
	return out
}

// Filter returns the records matching query, in catalog order
func (c *Catalog) Filter(query string) []*Person {
	if IsBlank(query) {
		return c.All()
	}
	out := make([]*Person, 0, len(c.people))
	for i := range c.people {
		if Matches(c.people[i], query) {
			out = append(out, &c.people[i])
		}
	}
	return out
}

// Names renders every record as "First Last", one per line
func (c *Catalog) Names() string {
	var b strings.Builder
	for i, p := range c.people {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.FullName())
	}
	return b.String()
}

// Phase is where the search pipeline currently is
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseFiltering
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseFiltering:
		return "filtering"
	default:
		return "unknown"
	}
}

// SearchSnapshot is an immutable view of the pipeline.
// Results, Empty and Err always belong to SettledQuery. Query is the live
// text and runs ahead of SettledQuery while Searching is true.
type SearchSnapshot struct {
	Query        string
	SettledQuery string
	Results      []*Person
	Searching    bool
	Empty        bool
	Err          error
	Generation   uint64
	Seq          uint64 // increases on every publish
	Phase        Phase
}

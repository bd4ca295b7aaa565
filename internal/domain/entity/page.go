package entity

import "time"

// SectionSnapshot is a read of one section or panel. HTML is the outer HTML
// of the container with every control tagged by a data-fp-ref attribute.
// Popups holds listbox options the page layer enumerated by opening each
// listbox, keyed by the listbox ref.
type SectionSnapshot struct {
	ReadID  string
	Locator string
	HTML    string
	Popups  map[string][]Option
	TakenAt time.Time
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

package selection

// State is the state of a parent/child select group
type State int

const (
	StateEmpty State = iota
	StateParentChosen
	StateParentAndChildChosen
)

func (s State) String() string {
	switch s {
	case StateParentChosen:
		return "parent_chosen"
	case StateParentAndChildChosen:
		return "parent_and_child_chosen"
	default:
		return "empty"
	}
}

// Child is one year select bound to the country select
type Child struct {
	Options []int
	Value   int
}

// Selector keeps one country select and its bound year selects consistent.
// It is not safe for concurrent use; each session owns its selectors.
type Selector struct {
	catalog  Catalog
	parent   string
	children []Child
}

// NewSelector creates a selector over catalog with the given number of year selects (at least one)
func NewSelector(catalog Catalog, children int) *Selector {
	if children < 1 {
		children = 1
	}
	return &Selector{
		catalog:  catalog,
		children: make([]Child, children),
	}
}

// ParentOptions returns the country names offered by the parent select
func (s *Selector) ParentOptions() []string {
	return s.catalog.Countries()
}

// SelectParent sets the country. Every child is cleared and its options are
// repopulated from the country's years, even if its old value is still offered.
func (s *Selector) SelectParent(country string) {
	if country != NoCountry && !s.catalog.Has(country) {
		country = NoCountry
	}
	s.parent = country
	for i := range s.children {
		var opts []int
		if country != NoCountry {
			opts = s.catalog.YearsFor(country)
		}
		s.children[i] = Child{Options: opts, Value: NoYear}
	}
}

// SelectChild sets the year of child slot. It reports false and changes nothing
// when no country is chosen, the slot does not exist or the year is not offered.
// NoYear clears the slot.
func (s *Selector) SelectChild(slot, year int) bool {
	if s.parent == NoCountry || slot < 0 || slot >= len(s.children) {
		return false
	}
	if year == NoYear {
		s.children[slot].Value = NoYear
		return true
	}
	for _, y := range s.children[slot].Options {
		if y == year {
			s.children[slot].Value = year
			return true
		}
	}
	return false
}

// Reset returns the selector to the empty state
func (s *Selector) Reset() {
	s.SelectParent(NoCountry)
}

// Parent returns the chosen country, or NoCountry
func (s *Selector) Parent() string {
	return s.parent
}

// Child returns the year held by slot, or NoYear
func (s *Selector) Child(slot int) int {
	if slot < 0 || slot >= len(s.children) {
		return NoYear
	}
	return s.children[slot].Value
}

// ChildOptions returns the years offered by slot
func (s *Selector) ChildOptions(slot int) []int {
	if slot < 0 || slot >= len(s.children) {
		return nil
	}
	out := make([]int, len(s.children[slot].Options))
	copy(out, s.children[slot].Options)
	return out
}

// Children returns the number of bound year selects
func (s *Selector) Children() int {
	return len(s.children)
}

// State reports the group's state. StateParentAndChildChosen requires every
// bound child to hold a year.
func (s *Selector) State() State {
	if s.parent == NoCountry {
		return StateEmpty
	}
	for _, c := range s.children {
		if c.Value == NoYear {
			return StateParentChosen
		}
	}
	return StateParentAndChildChosen
}

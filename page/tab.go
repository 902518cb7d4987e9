package page

import "fmt"

// Tab selects which questions the home page lists
type Tab string

const (
	TabPersonal Tab = "personal"
	TabGeneral  Tab = "general"
)

// DefaultTab is the tab shown before the user picks one
const DefaultTab = TabGeneral

// Tabs in display order
var Tabs = []Tab{TabGeneral, TabPersonal}

func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabPersonal, TabGeneral:
		return Tab(s), nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

func (t Tab) String() string {
	return string(t)
}

// Label is the button caption for the tab
func (t Tab) Label() string {
	switch t {
	case TabPersonal:
		return "Personal"
	case TabGeneral:
		return "General"
	}
	return string(t)
}

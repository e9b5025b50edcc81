package types

// EntryKind tells a render strategy which control to build for an entry.
type EntryKind int

// Render kinds. EntryUnset means "derive from the type and constraint".
const (
	EntryUnset EntryKind = iota
	EntryInput
	EntryCycling
	EntryDropdown
	EntrySlider
	EntryKeymap
	EntryDescription
	EntryError
)

var entryKindNames = []string{
	EntryUnset:       "unset",
	EntryInput:       "input",
	EntryCycling:     "cycling",
	EntryDropdown:    "dropdown",
	EntrySlider:      "slider",
	EntryKeymap:      "keymap",
	EntryDescription: "description",
	EntryError:       "error",
}

func (k EntryKind) String() string {
	if k < 0 || int(k) >= len(entryKindNames) {
		return "unset"
	}
	return entryKindNames[k]
}

// ParseEntryKind returns the EntryKind with the given name.
func ParseEntryKind(name string) (EntryKind, bool) {
	for i, n := range entryKindNames {
		if n == name {
			return EntryKind(i), true
		}
	}
	return EntryUnset, false
}

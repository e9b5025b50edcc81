package types

// KeyCode is the enum of keyboard keys bindable by keymap entries.
var KeyCode = NewEnum("KeyCode",
	"None",
	"Backspace", "Tab", "Return", "Escape", "Space", "Delete", "Insert",
	"Home", "End", "PageUp", "PageDown",
	"UpArrow", "DownArrow", "LeftArrow", "RightArrow",
	"Alpha0", "Alpha1", "Alpha2", "Alpha3", "Alpha4",
	"Alpha5", "Alpha6", "Alpha7", "Alpha8", "Alpha9",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	"LeftShift", "RightShift", "LeftControl", "RightControl", "LeftAlt", "RightAlt",
)

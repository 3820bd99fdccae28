package midi

// ControllerType identifies the kind of input source
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
	ControllerFile
)

func (t ControllerType) String() string {
	switch t {
	case ControllerKeyboard:
		return "keyboard"
	case ControllerFile:
		return "file"
	}
	return "unknown"
}

// Controller is the interface for note input sources.
// Events is closed once the controller stops.
type Controller interface {
	ID() string
	Type() ControllerType
	Events() <-chan Event
	Close() error
}

// event buffer size per controller
const eventBuffer = 64

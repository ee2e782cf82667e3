package contracts

// DeviceInfo contains information about a MIDI device.
type DeviceInfo struct {
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
	EntityName   string // Name of the entity to which the device belongs.
}

// ByteSource delivers raw serial MIDI bytes from an input device.
// Chunks are sent in arrival order; the receiver feeds them to a decoder byte by byte.
type ByteSource interface {
	Stop() error                        // Stops the source and releases resources.
	ListDevices() ([]DeviceInfo, error) // Lists all available MIDI input devices.
	SelectDevice(deviceID int) error    // Selects a MIDI device by its ID for capture.
	StartCapture(chunks chan<- []byte)  // Starts capturing raw bytes into the channel.
}

// Scancode is one transition notification from the keyboard source.
type Scancode struct {
	Code     byte // HID scancode.
	Explicit bool // Explicit is set when Pressed carries the edge polarity.
	Pressed  bool // Pressed is the edge polarity when Explicit is set.
}

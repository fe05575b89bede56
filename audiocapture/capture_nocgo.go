//go:build !cgo

package audiocapture

// New returns ErrUnsupported; capture needs cgo.
func New(cfg Config) (Capturer, error) {
	return nil, ErrUnsupported
}

// Devices returns ErrUnsupported; capture needs cgo.
func Devices() ([]DeviceInfo, error) {
	return nil, ErrUnsupported
}

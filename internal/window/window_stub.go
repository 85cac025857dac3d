//go:build !cgo

package window

import "errors"

// Run reports that this build has no window support.
func Run(_ Session, _ Options) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}

//go:build windows

package service

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/bft-labs/eventd/internal/ports"
)

// handshake resolves the process module handle the Windows service
// machinery is anchored to.
func handshake(logger ports.Logger) error {
	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		return fmt.Errorf("module handle: %w", err)
	}
	logger.Debug("platform handshake", ports.String("module", fmt.Sprintf("%#x", uintptr(module))))
	return nil
}

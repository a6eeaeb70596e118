//go:build !windows

package service

import (
	"fmt"
	"os"

	"github.com/bft-labs/eventd/internal/ports"
)

// handshake resolves the executable the service manager will launch.
func handshake(logger ports.Logger) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	logger.Debug("platform handshake", ports.String("executable", exe))
	return nil
}

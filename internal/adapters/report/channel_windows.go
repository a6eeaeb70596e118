//go:build windows

package report

import (
	"golang.org/x/sys/windows"
)

const (
	mbOK                  = 0x00000000
	mbIconError           = 0x00000010
	mbServiceNotification = 0x00200000
)

// platformChannel shows a modal message box. MB_SERVICE_NOTIFICATION puts it
// on the active desktop even when the process runs as a service.
func platformChannel(cfg Config) (string, deliverFunc, error) {
	title, err := windows.UTF16PtrFromString(cfg.Title)
	if err != nil {
		return ChannelMessageBox, nil, err
	}
	return ChannelMessageBox, func(msg string) error {
		text, err := windows.UTF16PtrFromString(msg)
		if err != nil {
			return err
		}
		_, err = windows.MessageBox(0, text, title, mbOK|mbIconError|mbServiceNotification)
		return err
	}, nil
}

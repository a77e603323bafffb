//go:build !windows
// +build !windows

package cmd

import (
	"os"
	"syscall"
	"unsafe"
)

type winsize struct {
	Row    uint16
	Col    uint16
	Xpixel uint16
	Ypixel uint16
}

// getTerminalSize returns the terminal dimensions, or 0,0 when they cannot
// be determined (tview falls back to its own detection).
func getTerminalSize() (int, int) {
	if c, r, ok := sizeFromEnv(); ok {
		return c, r
	}

	var ws winsize
	ret, _, _ := syscall.Syscall(syscall.SYS_IOCTL,
		os.Stdout.Fd(),
		uintptr(syscall.TIOCGWINSZ),
		uintptr(unsafe.Pointer(&ws)))
	if int(ret) == -1 {
		return 0, 0
	}
	return int(ws.Col), int(ws.Row)
}

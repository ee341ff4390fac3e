//go:build linux || darwin

package main

import (
	"errors"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// rawInput switches the terminal to single-key input without echo and
// returns a function restoring the previous state. Output processing and
// signals stay enabled so logs keep their line breaks and Ctrl+C still stops
// the server.
func rawInput(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}

	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return nil, err
	}

	return func() {
		unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)
	}, nil
}

//go:build windows

package main

import (
	"errors"

	"golang.org/x/term"
)

// rawInput switches the console to single-key input and returns a function
// restoring the previous mode. Ctrl+C then arrives as a key press.
func rawInput(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() {
		term.Restore(fd, oldState)
	}, nil
}

// Package clipboard implements the Clipboard port.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	atc "github.com/atotto/clipboard"

	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

// ErrUnsupported is returned by NewSystem when no clipboard utility
// (pbcopy, xclip, xsel, wl-copy, clip.exe) is available.
var ErrUnsupported = errors.New("system clipboard unsupported on this host")

// Compile-time interface satisfaction checks.
var (
	_ driven.Clipboard = (*System)(nil)
	_ driven.Clipboard = Discard{}
)

// System writes to the host clipboard.
type System struct {
	write func(string) error
}

// NewSystem returns a System clipboard, or ErrUnsupported when the host has
// no clipboard utility.
func NewSystem() (*System, error) {
	if atc.Unsupported {
		return nil, ErrUnsupported
	}
	return &System{write: atc.WriteAll}, nil
}

// WriteText replaces the host clipboard contents with text.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Discard drops everything written to it. It is used when the clipboard is
// disabled and the caller displays the payload instead.
type Discard struct{}

// WriteText does nothing.
func (Discard) WriteText(context.Context, string) error { return nil }

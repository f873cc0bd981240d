package driven

import "context"

// Clipboard defines the driven port for the system clipboard.
type Clipboard interface {
	// WriteText replaces the clipboard contents with text.
	WriteText(ctx context.Context, text string) error
}

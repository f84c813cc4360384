// Package render provides markdown and message rendering for terminal
// output.
package render

import "github.com/diogo/orbchat/internal/config"

// Options configures the markdown renderer behavior.
type Options struct {
	// Width defines the maximum output width (default: 80)
	Width int

	// Style defines the theme: "dark", "light", or path to JSON file
	Style string

	// EnableEmoji converts :emoji: to unicode characters
	EnableEmoji bool

	// PreserveNewLines preserves original line breaks
	PreserveNewLines bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// FromConfig builds Options from the user's markdown settings.
func FromConfig(mc config.MarkdownConfig) Options {
	opts := DefaultOptions()
	if mc.Style != "" {
		opts.Style = mc.Style
	}
	opts.EnableEmoji = mc.EnableEmoji
	opts.PreserveNewLines = mc.PreserveNewLines
	return opts
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

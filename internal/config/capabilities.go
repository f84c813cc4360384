package config

import (
	"sync"

	"github.com/diogo/orbchat/internal/models"
)

// CapabilityOverride forces individual capability flags for one LLM.
// Nil fields leave the fetched value untouched.
type CapabilityOverride struct {
	Disabled *bool `json:"disabled,omitempty"`
	Text     *bool `json:"text,omitempty"`
	Image    *bool `json:"image,omitempty"`
	PDF      *bool `json:"pdf,omitempty"`
	Tools    *bool `json:"tools,omitempty"`
}

// ApplyCapabilityOverrides returns a copy of llms with the configured
// overrides applied. Models overridden to disabled are filtered out.
func ApplyCapabilityOverrides(llms []models.LLM, overrides map[string]CapabilityOverride) []models.LLM {
	if len(overrides) == 0 {
		return llms
	}

	out := make([]models.LLM, 0, len(llms))
	for _, m := range llms {
		ov, ok := overrides[m.ID]
		if ok {
			if ov.Disabled != nil {
				m.Disabled = *ov.Disabled
			}
			if ov.Text != nil {
				m.Capabilities.Text = *ov.Text
			}
			if ov.Image != nil {
				m.Capabilities.Image = *ov.Image
			}
			if ov.PDF != nil {
				m.Capabilities.PDF = *ov.PDF
			}
			if ov.Tools != nil {
				m.Capabilities.Tools = *ov.Tools
			}
		}
		if m.Disabled {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Notifier broadcasts configuration updates to subscribers. The session
// layer receives its Config at construction and subscribes here for
// changes instead of reading globals.
type Notifier struct {
	mu   sync.Mutex
	subs []chan Config
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Updates carries every successful SaveConfig to in-process
// subscribers.
var Updates = NewNotifier()

// Subscribe returns a channel that receives each published Config.
// The channel is buffered; a slow subscriber drops updates rather than
// blocking the publisher.
func (n *Notifier) Subscribe() <-chan Config {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Config, 1)
	n.subs = append(n.subs, ch)
	return ch
}

// Publish sends cfg to all subscribers.
func (n *Notifier) Publish(cfg Config) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- cfg:
		default:
			// replace the pending update with the newer one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- cfg:
			default:
			}
		}
	}
}

package bots

// Capability is a per-bot UI surface or behaviour switch.
type Capability string

const (
	// CapGenericNoMatch exposes use_generic_no_match, no_match_replies and
	// no_match_pick in the settings form.
	CapGenericNoMatch Capability = "generic_no_match"
	// CapGreeting shows the welcome line when a chat starts.
	CapGreeting Capability = "greeting"
	// CapConfigSummary shows generation parameters and pre-prompts when a chat starts.
	CapConfigSummary Capability = "config_summary"
)

// Bot describes one configured chatbot variant.
type Bot struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	FrontendPage string       `json:"frontend_page,omitempty" yaml:"frontend_page,omitempty"`
	Channel      string       `json:"channel,omitempty" yaml:"channel,omitempty"`
	Capabilities []Capability `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// Has reports whether the bot declares the capability.
func (b Bot) Has(c Capability) bool {
	for _, have := range b.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// DisplayName returns the name, or the id when no name is set.
func (b Bot) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}

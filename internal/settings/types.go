package settings

import "errors"

// Default values for bot settings when not set.
const (
	DefaultTemperature  = 0.7
	DefaultTopP         = 0.9
	DefaultMaxTokens    = 256
	DefaultRAGThreshold = 0.35
)

// Pick selects which no-match reply is used when several are configured.
type Pick string

const (
	PickFirst  Pick = "first"
	PickRandom Pick = "random"
)

// Source tags where a rule response comes from.
type Source string

const (
	SourceFAQ      Source = "faq"
	SourceFallback Source = "fallback"
)

var (
	ErrInvalidPick   = errors.New("invalid no-match pick")
	ErrInvalidSource = errors.New("invalid rule source")
)

// Generation holds sampling parameters passed to the model.
type Generation struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

// Features toggles the answer pipeline stages. UseGenericNoMatch is only
// sent for bots with the generic no-match capability.
type Features struct {
	UseRules           bool  `json:"use_rules" yaml:"use_rules"`
	UseRAG             bool  `json:"use_rag" yaml:"use_rag"`
	EnableDefaultRules bool  `json:"enable_default_rules" yaml:"enable_default_rules"`
	UseGenericNoMatch  *bool `json:"use_generic_no_match,omitempty" yaml:"use_generic_no_match,omitempty"`
}

// MenuItem is a suggestion chip shown to chat users.
type MenuItem struct {
	Label   string `json:"label" yaml:"label"`
	Message string `json:"message" yaml:"message"`
}

// Rule is a keyword-triggered canned response.
type Rule struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Response string   `json:"response" yaml:"response"`
	Source   Source   `json:"source" yaml:"source"`
}

// Document is the full persisted configuration for one bot and channel.
type Document struct {
	Generation      Generation `json:"generation" yaml:"generation"`
	Features        Features   `json:"features" yaml:"features"`
	GroundedOnly    bool       `json:"grounded_only" yaml:"grounded_only"`
	RAGThreshold    float64    `json:"rag_threshold" yaml:"rag_threshold"`
	MenuSuggestions []MenuItem `json:"menu_suggestions" yaml:"menu_suggestions"`
	PrePrompts      []string   `json:"pre_prompts" yaml:"pre_prompts"`
	Rules           []Rule     `json:"rules" yaml:"rules"`
	HelpTemplate    string     `json:"help_template" yaml:"help_template"`
	AllowedDomains  []string   `json:"allowed_domains" yaml:"allowed_domains"`
	NoMatchReplies  []string   `json:"no_match_replies,omitempty" yaml:"no_match_replies,omitempty"`
	NoMatchPick     Pick       `json:"no_match_pick,omitempty" yaml:"no_match_pick,omitempty"`
}

package settings

import "strings"

const defaultHelpTemplate = "Puedo ayudarte con: {topics}. Escribí tu consulta o elegí una opción del menú."

// freeChannels run without rules, RAG or menu.
var freeChannels = map[string]bool{
	"mar2": true,
	"free": true,
}

// Base returns the values a stored or submitted document starts from before
// its own fields are applied: model-level generation defaults, rules and RAG
// on, empty lists. It carries no bot or channel specific content.
func Base() Document {
	return Document{
		Generation: Generation{
			Temperature: DefaultTemperature,
			TopP:        DefaultTopP,
			MaxTokens:   DefaultMaxTokens,
		},
		Features: Features{
			UseRules: true,
			UseRAG:   true,
		},
		RAGThreshold:    DefaultRAGThreshold,
		MenuSuggestions: []MenuItem{},
		PrePrompts:      []string{},
		Rules:           []Rule{},
		AllowedDomains:  []string{},
	}
}

// Defaults returns the baseline document for a bot and channel.
func Defaults(botID, channel string) Document {
	gen := Generation{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}
	if botID == "mar2" || freeChannels[strings.ToLower(strings.TrimSpace(channel))] {
		return Document{
			Generation:      gen,
			Features:        Features{},
			RAGThreshold:    DefaultRAGThreshold,
			MenuSuggestions: []MenuItem{},
			PrePrompts:      []string{},
			Rules:           []Rule{},
			AllowedDomains:  []string{},
		}
	}
	return Document{
		Generation: gen,
		Features: Features{
			UseRules:           true,
			UseRAG:             true,
			EnableDefaultRules: true,
		},
		RAGThreshold: DefaultRAGThreshold,
		MenuSuggestions: []MenuItem{
			{Label: "Pagar impuestos", Message: "¿Cómo pago mis impuestos?"},
			{Label: "Sacar turno", Message: "Quiero sacar un turno"},
			{Label: "Hacer reclamo", Message: "Quiero hacer un reclamo"},
			{Label: "Ayuda", Message: "ayuda"},
		},
		PrePrompts:     []string{},
		Rules:          []Rule{},
		HelpTemplate:   defaultHelpTemplate,
		AllowedDomains: []string{},
		NoMatchReplies: []string{},
		NoMatchPick:    PickFirst,
	}
}

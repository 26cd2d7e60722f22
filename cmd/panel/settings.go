package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/webchatbot/panel/internal/form"
	"github.com/webchatbot/panel/internal/settings"
)

// settingsFlags mirrors the editable form. Numbers stay strings so invalid
// input falls back to the stored value instead of failing flag parsing.
type settingsFlags struct {
	temperature  string
	topP         string
	maxTokens    string
	ragThreshold string

	useRules           bool
	useRAG             bool
	enableDefaultRules bool
	groundedOnly       bool

	suggestions      []string
	clearSuggestions bool
	prePrompts       []string
	clearPrePrompts  bool
	helpTemplate     string
	allowedDomains   string

	genericNoMatch bool
	noMatchReplies []string
	noMatchPick    string

	defaults bool
	dryRun   bool
}

func (f *settingsFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.temperature, "temperature", "", "Sampling temperature [0,2]")
	fs.StringVar(&f.topP, "top-p", "", "Nucleus sampling [0,1]")
	fs.StringVar(&f.maxTokens, "max-tokens", "", "Reply length limit (>=1)")
	fs.StringVar(&f.ragThreshold, "rag-threshold", "", "RAG similarity threshold [0,1], read only with RAG on")
	fs.BoolVar(&f.useRules, "use-rules", false, "Enable keyword rules")
	fs.BoolVar(&f.useRAG, "use-rag", false, "Enable retrieval")
	fs.BoolVar(&f.enableDefaultRules, "enable-default-rules", false, "Enable the built-in rules")
	fs.BoolVar(&f.groundedOnly, "grounded-only", false, "Answer only from grounded content")
	fs.StringArrayVar(&f.suggestions, "suggestion", nil, "Menu chip as Label=Message (repeatable, replaces the list)")
	fs.BoolVar(&f.clearSuggestions, "clear-suggestions", false, "Remove every menu chip")
	fs.StringArrayVar(&f.prePrompts, "pre-prompt", nil, "Pre-prompt (repeatable, replaces the list)")
	fs.BoolVar(&f.clearPrePrompts, "clear-pre-prompts", false, "Remove every pre-prompt")
	fs.StringVar(&f.helpTemplate, "help-template", "", "Help reply template")
	fs.StringVar(&f.allowedDomains, "allowed-domains", "", "Comma separated domains")
	fs.BoolVar(&f.genericNoMatch, "generic-no-match", false, "Use generic no-match replies")
	fs.StringArrayVar(&f.noMatchReplies, "no-match-reply", nil, "No-match reply (repeatable, replaces the list)")
	fs.StringVar(&f.noMatchPick, "no-match-pick", "", "No-match reply selection: first or random")
	fs.BoolVar(&f.defaults, "defaults", false, "Start from the bot defaults instead of the stored settings")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Print the collected document without saving")
}

// apply writes every flag the user set into the form fields.
func (f *settingsFlags) apply(fs *pflag.FlagSet, fields *form.Fields, genericNoMatch bool) error {
	set := func(name string) bool { return fs.Changed(name) }

	if set("temperature") {
		fields.Temperature = f.temperature
	}
	if set("top-p") {
		fields.TopP = f.topP
	}
	if set("max-tokens") {
		fields.MaxTokens = f.maxTokens
	}
	if set("rag-threshold") {
		fields.RAGThreshold = f.ragThreshold
	}
	if set("use-rules") {
		fields.UseRules = f.useRules
	}
	if set("use-rag") {
		fields.UseRAG = f.useRAG
	}
	if set("enable-default-rules") {
		fields.EnableDefaultRules = f.enableDefaultRules
	}
	if set("grounded-only") {
		fields.GroundedOnly = f.groundedOnly
	}
	if f.clearSuggestions {
		fields.Suggestions = []form.Suggestion{}
	}
	if set("suggestion") {
		rows := make([]form.Suggestion, 0, len(f.suggestions))
		for _, raw := range f.suggestions {
			rows = append(rows, parseSuggestion(raw))
		}
		fields.Suggestions = rows
	}
	if f.clearPrePrompts {
		fields.PrePrompts = []string{}
	}
	if set("pre-prompt") {
		fields.PrePrompts = append([]string{}, f.prePrompts...)
	}
	if set("help-template") {
		fields.HelpTemplate = f.helpTemplate
	}
	if set("allowed-domains") {
		fields.AllowedDomains = f.allowedDomains
	}

	noMatch := set("generic-no-match") || set("no-match-reply") || set("no-match-pick")
	if noMatch && !genericNoMatch {
		return fmt.Errorf("this bot has no generic no-match settings")
	}
	if set("generic-no-match") {
		fields.UseGenericNoMatch = f.genericNoMatch
	}
	if set("no-match-reply") {
		fields.NoMatchReplies = append([]string{}, f.noMatchReplies...)
	}
	if set("no-match-pick") {
		fields.NoMatchPick = f.noMatchPick
	}
	return nil
}

// parseSuggestion reads "Label=Message". A bare value is used for both.
// Rows with a blank side are kept; the form drops them on save.
func parseSuggestion(raw string) form.Suggestion {
	label, message, ok := strings.Cut(raw, "=")
	if !ok {
		message = label
	}
	return form.Suggestion{Label: strings.TrimSpace(label), Message: strings.TrimSpace(message)}
}

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and edit a bot's settings",
	}

	get := &cobra.Command{
		Use:   "get <bot>",
		Short: "Show the stored settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openForm(cmd, args[0])
			if err != nil {
				return err
			}
			return printDocument(cmd, a.opts.output, s.Loaded())
		},
	}

	defaults := &cobra.Command{
		Use:   "defaults <bot>",
		Short: "Show the bot defaults without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, err := a.resolveBot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc, err := a.client.FetchDefaults(cmd.Context(), bot.ID, bot.Channel)
			if err != nil {
				return err
			}
			return printDocument(cmd, a.opts.output, doc)
		},
	}

	reset := &cobra.Command{
		Use:   "reset <bot>",
		Short: "Restore and store the bot defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openForm(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := s.Reset(cmd.Context())
			if err != nil {
				return err
			}
			cmd.PrintErrln("settings reset to defaults")
			return printDocument(cmd, a.opts.output, doc)
		},
	}

	var sf settingsFlags
	set := &cobra.Command{
		Use:   "set <bot>",
		Short: "Edit fields and save the whole document",
		Long: "Loads the stored settings, applies the given flags and saves the whole document.\n" +
			"Unparsable numbers keep the stored value; every number is clamped to its range.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openForm(cmd, args[0])
			if err != nil {
				return err
			}
			if sf.defaults {
				if _, err := s.LoadDefaults(cmd.Context()); err != nil {
					return err
				}
			}
			if err := sf.apply(cmd.Flags(), &s.Fields, s.GenericNoMatch()); err != nil {
				return err
			}
			if sf.dryRun {
				doc, err := s.Collect()
				if err != nil {
					return err
				}
				return printDocument(cmd, a.opts.output, doc)
			}
			doc, err := s.Save(cmd.Context())
			if err != nil {
				return err
			}
			cmd.PrintErrln("settings saved")
			return printDocument(cmd, a.opts.output, doc)
		},
	}
	sf.bind(set.Flags())

	cmd.AddCommand(get, set, reset, defaults)
	return cmd
}

func (a *app) openForm(cmd *cobra.Command, botID string) (*form.Session, error) {
	bot, err := a.resolveBot(cmd.Context(), botID)
	if err != nil {
		return nil, err
	}
	return form.Open(cmd.Context(), a.log, a.client, bot)
}

// printDocument prints a settings document; table output uses YAML.
func printDocument(cmd *cobra.Command, format string, doc settings.Document) error {
	return printValue(cmd.OutOrStdout(), format, doc)
}

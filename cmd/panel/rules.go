package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webchatbot/panel/internal/form"
	"github.com/webchatbot/panel/internal/rules"
	"github.com/webchatbot/panel/internal/settings"
)

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Edit a bot's keyword rules",
		Long:  "Rule edits are applied to the whole settings document, which is saved on success.",
	}

	list := &cobra.Command{
		Use:   "list <bot>",
		Short: "List the rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openForm(cmd, args[0])
			if err != nil {
				return err
			}
			ed := s.EditRules()
			return printTable(cmd.OutOrStdout(), a.opts.output, s.Fields.Rules,
				[]string{"#", "On", "Keywords", "Response", "Source"}, ruleRows(ed.Rows()))
		},
	}

	var (
		keywords string
		response string
		source   string
		disabled bool
	)
	add := &cobra.Command{
		Use:   "add <bot>",
		Short: "Append a rule and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := settings.ParseSource(source)
			if err != nil {
				return err
			}
			row := rules.Row{Enabled: !disabled, Keywords: keywords, Response: response, Source: src}
			if len(settings.SplitList(row.Keywords)) == 0 || strings.TrimSpace(row.Response) == "" {
				return fmt.Errorf("a rule needs at least one keyword and a response")
			}
			return a.editRules(cmd, args[0], func(ed *rules.Editor) error {
				return ed.Set(ed.Add(), row)
			})
		},
	}
	add.Flags().StringVarP(&keywords, "keywords", "k", "", "Comma separated keywords")
	add.Flags().StringVarP(&response, "response", "r", "", "Reply text")
	add.Flags().StringVar(&source, "source", string(settings.SourceFAQ), "Reply source: faq or fallback")
	add.Flags().BoolVar(&disabled, "disabled", false, "Add the rule switched off")

	remove := &cobra.Command{
		Use:     "rm <bot> <n>",
		Aliases: []string{"remove"},
		Short:   "Remove rule n (as numbered by list) and save",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := ruleIndex(args[1])
			if err != nil {
				return err
			}
			return a.editRules(cmd, args[0], func(ed *rules.Editor) error {
				return ed.Remove(i)
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <bot> <n>",
		Short: "Switch rule n on or off and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := ruleIndex(args[1])
			if err != nil {
				return err
			}
			return a.editRules(cmd, args[0], func(ed *rules.Editor) error {
				return ed.Toggle(i)
			})
		},
	}

	cmd.AddCommand(list, add, remove, toggle)
	return cmd
}

// editRules runs one editor session against the form and saves the document.
func (a *app) editRules(cmd *cobra.Command, botID string, edit func(*rules.Editor) error) error {
	s, err := a.openForm(cmd, botID)
	if err != nil {
		return err
	}
	ed := s.EditRules()
	if err := edit(ed); err != nil {
		return err
	}
	s.CommitRules(ed)
	return saveAndListRules(cmd, a, s)
}

func saveAndListRules(cmd *cobra.Command, a *app, s *form.Session) error {
	doc, err := s.Save(cmd.Context())
	if err != nil {
		return err
	}
	cmd.PrintErrln("rules saved")
	return printTable(cmd.OutOrStdout(), a.opts.output, doc.Rules,
		[]string{"#", "On", "Keywords", "Response", "Source"}, ruleRows(rules.Open(doc.Rules).Rows()))
}

func ruleRows(rows []rules.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for i, r := range rows {
		on := "no"
		if r.Enabled {
			on = "yes"
		}
		out = append(out, []string{strconv.Itoa(i + 1), on, r.Keywords, r.Response, string(r.Source)})
	}
	return out
}

// ruleIndex converts a 1-based rule number to an index.
func ruleIndex(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid rule number %q", raw)
	}
	return n - 1, nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webchatbot/panel/internal/theme"
)

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage the chat color themes",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List presets and saved themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.themeStore()
			themes, err := store.List()
			if err != nil {
				return err
			}
			active, err := store.ActiveName()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(themes))
			for _, t := range themes {
				mark := ""
				if t.Name == active {
					mark = "*"
				}
				kind := "saved"
				if theme.IsReserved(t.Name) {
					kind = "preset"
				}
				rows = append(rows, []string{mark, t.Name, kind, t.Vars[theme.VarAccent], t.Vars[theme.VarFontSize]})
			}
			return printTable(cmd.OutOrStdout(), a.opts.output, themes,
				[]string{"", "Name", "Kind", "Accent", "Font size"}, rows)
		},
	}

	show := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a theme (the active one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.themeStore()
			var (
				t   theme.Theme
				err error
			)
			if len(args) == 1 {
				t, err = store.Get(args[0])
			} else {
				t, err = store.Active()
			}
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(theme.Vars))
			for _, name := range theme.Vars {
				rows = append(rows, []string{name, t.Vars[name]})
			}
			return printTable(cmd.OutOrStdout(), a.opts.output, t, []string{"Variable", "Value"}, rows)
		},
	}

	var saveVars []string
	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the active theme with changes under a new name and use it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.themeStore()
			base, err := store.Active()
			if err != nil {
				return err
			}
			vars, err := mergeVars(base.Vars, saveVars)
			if err != nil {
				return err
			}
			if err := store.Save(args[0], vars); err != nil {
				return err
			}
			cmd.PrintErrf("theme %q saved and active\n", strings.TrimSpace(args[0]))
			return nil
		},
	}
	save.Flags().StringArrayVar(&saveVars, "var", nil, "Variable as name=value, e.g. accent=#22c55e (repeatable)")

	var updateVars []string
	update := &cobra.Command{
		Use:   "update <name>",
		Short: "Change variables of a saved theme and use it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.themeStore()
			current, err := store.Get(args[0])
			if err != nil {
				return err
			}
			vars, err := mergeVars(current.Vars, updateVars)
			if err != nil {
				return err
			}
			if err := store.Update(args[0], vars); err != nil {
				return err
			}
			cmd.PrintErrf("theme %q updated\n", args[0])
			return nil
		},
	}
	update.Flags().StringArrayVar(&updateVars, "var", nil, "Variable as name=value (repeatable)")

	del := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved theme",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.themeStore().Delete(args[0]); err != nil {
				return err
			}
			cmd.PrintErrf("theme %q deleted, default is active\n", args[0])
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <name>",
		Short: "Make a theme active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.themeStore().SetActive(args[0])
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the presets and activate default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.themeStore().ResetPresets()
		},
	}

	cmd.AddCommand(list, show, save, update, del, use, reset)
	return cmd
}

// mergeVars overlays name=value pairs on base. Names may omit the leading "--".
func mergeVars(base map[string]string, pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(base)+len(pairs))
	for k, v := range base {
		out[k] = v
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q, want name=value", pair)
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		if !knownVar(name) {
			return nil, fmt.Errorf("unknown theme variable %q", name)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

func knownVar(name string) bool {
	for _, v := range theme.Vars {
		if v == name {
			return true
		}
	}
	return false
}

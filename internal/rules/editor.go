// Package rules implements the nested editor for a bot's keyword rules.
// An Editor works on its own copy; nothing reaches the parent form until the
// caller commits the collected list, and dropping the Editor discards every
// pending change.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/webchatbot/panel/internal/settings"
)

var ErrIndexOutOfRange = errors.New("rule index out of range")

// Row is one editable rule as typed by the operator. Keywords is the raw
// comma separated input.
type Row struct {
	Enabled  bool
	Keywords string
	Response string
	Source   settings.Source
}

// Editor holds the ordered rows being edited.
type Editor struct {
	rows []Row
}

// Open seeds an editor from a rule list.
func Open(list []settings.Rule) *Editor {
	rows := make([]Row, 0, len(list))
	for _, r := range list {
		rows = append(rows, RowFromRule(r))
	}
	return &Editor{rows: rows}
}

// RowFromRule renders a rule as an editable row.
func RowFromRule(r settings.Rule) Row {
	src := r.Source
	if src == "" {
		src = settings.SourceFAQ
	}
	return Row{
		Enabled:  r.Enabled,
		Keywords: strings.Join(r.Keywords, ", "),
		Response: r.Response,
		Source:   src,
	}
}

// Len returns the number of rows, including incomplete ones.
func (e *Editor) Len() int {
	return len(e.rows)
}

// Rows returns a copy of the current rows.
func (e *Editor) Rows() []Row {
	return append([]Row(nil), e.rows...)
}

// Add appends an empty enabled faq row and returns its index.
func (e *Editor) Add() int {
	e.rows = append(e.rows, Row{Enabled: true, Source: settings.SourceFAQ})
	return len(e.rows) - 1
}

// Set replaces the row at i.
func (e *Editor) Set(i int, row Row) error {
	if err := e.check(i); err != nil {
		return err
	}
	e.rows[i] = row
	return nil
}

// Toggle flips the enabled flag of the row at i.
func (e *Editor) Toggle(i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	e.rows[i].Enabled = !e.rows[i].Enabled
	return nil
}

// Remove deletes the row at i, keeping the order of the others.
func (e *Editor) Remove(i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	return nil
}

// Collect converts the rows back into rules. Rows without keywords or
// without a response are dropped.
func (e *Editor) Collect() []settings.Rule {
	out := make([]settings.Rule, 0, len(e.rows))
	for _, row := range e.rows {
		keywords := settings.SplitList(row.Keywords)
		response := strings.TrimSpace(row.Response)
		if len(keywords) == 0 || response == "" {
			continue
		}
		src := row.Source
		if src == "" {
			src = settings.SourceFAQ
		}
		out = append(out, settings.Rule{
			Enabled:  row.Enabled,
			Keywords: keywords,
			Response: response,
			Source:   src,
		})
	}
	return out
}

func (e *Editor) check(i int) error {
	if i < 0 || i >= len(e.rows) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(e.rows))
	}
	return nil
}

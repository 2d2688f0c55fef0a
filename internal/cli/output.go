package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

// printer writes command results either as indented JSON or as plain text
// for humans.
type printer struct {
	w    io.Writer
	json bool
}

func (p *printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// result prints v as JSON in --json mode, otherwise calls human.
func (p *printer) result(v any, human func(w io.Writer)) error {
	if p.json {
		return p.writeJSON(v)
	}
	human(p.w)
	return nil
}

// success reports a completed mutation.
func (p *printer) success(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		return p.writeJSON(map[string]any{"ok": true, "message": msg})
	}
	successColor.Fprint(p.w, "✓ ")
	fmt.Fprintln(p.w, msg)
	return nil
}

func (p *printer) warn(format string, args ...any) {
	if p.json {
		return
	}
	warnColor.Fprintf(p.w, "! "+format+"\n", args...)
}

// table prints rows under a header with aligned columns.
func (p *printer) table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()
}

// fieldsFromArgs parses key=value arguments into form input.
func fieldsFromArgs(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, userError(fmt.Errorf("invalid field %q (expected key=value)", arg))
		}
		fields[key] = value
	}
	return fields, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

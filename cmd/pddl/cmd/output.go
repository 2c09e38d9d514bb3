package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/workspace"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorRed     = "\033[31m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// useColor is resolved from --color before any command runs.
var useColor bool

// paint wraps s in color when color output is on.
func paint(color, s string) string {
	if !useColor {
		return s
	}
	return color + s + colorReset
}

// formatProblems renders a one-line verdict for f followed by its problems
// in compiler style.
//
//	✗ domain.pddl  domain  2 errors
//	  domain.pddl:3:5: error: unexpected closing bracket
func formatProblems(name string, f model.FileInfo) string {
	problems := f.Base().Problems()
	errs, warns := 0, 0
	for _, p := range problems {
		switch p.Severity {
		case model.SeverityError:
			errs++
		case model.SeverityWarning:
			warns++
		}
	}

	var sb strings.Builder
	mark := paint(colorGreen, "✓")
	if errs > 0 {
		mark = paint(colorRed, "✗")
	} else if warns > 0 {
		mark = paint(colorYellow, "!")
	}
	fmt.Fprintf(&sb, "%s %s  %s", mark, paint(colorCyan, name), paint(colorMagenta, f.Kind().String()))
	if errs > 0 {
		fmt.Fprintf(&sb, "  %s", plural(errs, "error"))
	}
	if warns > 0 {
		fmt.Fprintf(&sb, "  %s", plural(warns, "warning"))
	}
	sb.WriteString("\n")

	for _, p := range problems {
		color := colorGray
		switch p.Severity {
		case model.SeverityError:
			color = colorRed
		case model.SeverityWarning:
			color = colorYellow
		}
		fmt.Fprintf(&sb, "  %s:%d:%d: %s: %s\n", name, p.Line+1, p.Column+1, paint(color, p.Severity.String()), p.Message)
	}
	return sb.String()
}

// formatEvent renders one workspace event for the watch stream.
func formatEvent(name string, ev workspace.Event) string {
	color := colorGreen
	switch ev.Kind {
	case workspace.Updated:
		color = colorCyan
	case workspace.Removing:
		color = colorYellow
	}
	line := fmt.Sprintf("%-9s %s v%d", paint(color, ev.Kind.String()), name, ev.Version)
	if ev.Kind == workspace.Removing {
		return line + "\n"
	}
	return line + "  " + formatProblems(name, ev.File)
}

// section renders a bold heading and its indented lines; empty sections
// are omitted.
func section(title string, lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s (%d)\n", paint(colorBold, title), len(lines))
	for _, l := range lines {
		fmt.Fprintf(&sb, "    %s\n", l)
	}
	return sb.String()
}

// field renders "  Key:  value".
func field(key, value string) string {
	return fmt.Sprintf("  %-12s %s\n", key+":", value)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func declarations(vars []model.Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = "(" + v.Declaration() + ")"
	}
	return out
}

// typeLines renders "child - parent" for every declared type.
func typeLines(h *model.Inheritance) []string {
	var out []string
	for _, name := range h.Names() {
		if name == model.DefaultType {
			continue
		}
		parents := h.Parents(name)
		if len(parents) == 0 {
			out = append(out, name)
			continue
		}
		out = append(out, name+" - "+strings.Join(parents, " "))
	}
	return out
}

// objectLines groups objects by type: "type: a b c".
func objectLines(m *model.ObjectTypes) []string {
	byType := make(map[string][]string)
	for _, obj := range m.Objects() {
		typ, _ := m.Type(obj)
		byType[typ] = append(byType[typ], obj)
	}
	types := make([]string, 0, len(byType))
	for typ := range byType {
		types = append(types, typ)
	}
	sort.Strings(types)
	out := make([]string, len(types))
	for i, typ := range types {
		out[i] = typ + ": " + strings.Join(byType[typ], " ")
	}
	return out
}

func formatSeconds(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

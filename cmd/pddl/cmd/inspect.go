package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/corey/pddl/internal/app"
	"github.com/corey/pddl/internal/domain/model"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the model of a workspace file",
	Long:  "Loads the workspace around the file and prints its model together with its associated files.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Stop()

	if _, err := a.Load(context.Background()); err != nil {
		return err
	}
	f, ok := a.File(args[0])
	if !ok {
		return fmt.Errorf("%s is not part of the workspace at %s (check watch.include)", args[0], a.Root)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatInspect(a, f))
	return nil
}

// formatInspect renders the model of f. Associated files are resolved
// through the workspace.
func formatInspect(a *app.App, f model.FileInfo) string {
	var sb strings.Builder
	sb.WriteString(formatProblems(a.RelPath(f.Base().URI), f))
	ws := a.Workspace

	switch info := f.(type) {
	case *model.DomainInfo:
		sb.WriteString(field("Domain", info.Name))
		sb.WriteString(field("Requirements", strings.Join(info.Requirements, " ")))
		sb.WriteString(section("Types", typeLines(info.Types)))
		sb.WriteString(section("Constants", objectLines(info.Constants)))
		sb.WriteString(section("Predicates", declarations(info.Predicates)))
		sb.WriteString(section("Functions", declarations(info.Functions)))
		var actions []string
		for _, act := range info.Actions {
			actions = append(actions, fmt.Sprintf("%s %s", act.Kind, act.Name))
		}
		sb.WriteString(section("Actions", actions))
		var problems []string
		for _, p := range ws.ProblemFilesFor(info) {
			problems = append(problems, a.RelPath(p.URI))
		}
		sb.WriteString(section("Problems", problems))

	case *model.ProblemInfo:
		sb.WriteString(field("Problem", info.Name))
		sb.WriteString(field("Domain", info.DomainName))
		if d, ok := ws.DomainFileFor(info); ok {
			sb.WriteString(field("Domain file", a.RelPath(d.URI)))
		} else {
			sb.WriteString(field("Domain file", paint(colorYellow, "unresolved")))
		}
		sb.WriteString(section("Objects", objectLines(info.Objects)))
		var facts []string
		for _, v := range info.Init {
			line := fmt.Sprintf("(%s) = %s", v.VariableName, v.Value)
			if v.Time > 0 {
				line = "at " + formatSeconds(v.Time) + " " + line
			}
			facts = append(facts, line)
		}
		sb.WriteString(section("Init", facts))
		if info.Metric != "" {
			sb.WriteString(field("Metric", info.Metric))
		}
		var plans []string
		for _, p := range ws.PlanFilesFor(info) {
			plans = append(plans, a.RelPath(p.Base().URI))
		}
		sb.WriteString(section("Plans", plans))

	case *model.PlanInfo:
		sb.WriteString(planHeader(a, f, info.DomainName, info.ProblemName))
		var steps []string
		for _, s := range info.Steps {
			line := "(" + s.FullActionName() + ")"
			if s.HasTime {
				line = formatSeconds(s.Time) + ": " + line
			}
			if s.HasDuration {
				line += " [" + formatSeconds(s.Duration) + "]"
			}
			steps = append(steps, line)
		}
		sb.WriteString(section("Steps", steps))
		sb.WriteString(field("Makespan", formatSeconds(info.Makespan())))
		if info.HasMetric {
			sb.WriteString(field("Metric", formatSeconds(info.Metric)))
		}

	case *model.HappeningsInfo:
		sb.WriteString(planHeader(a, f, info.DomainName, info.ProblemName))
		var lines []string
		for _, h := range info.Happenings {
			line := fmt.Sprintf("%s: %s (%s)", formatSeconds(h.Time), h.Kind, h.FullActionName())
			if h.Counter > 0 {
				line += fmt.Sprintf(" #%d", h.Counter)
			}
			lines = append(lines, line)
		}
		sb.WriteString(section("Happenings", lines))
	}
	return sb.String()
}

func planHeader(a *app.App, f model.FileInfo, domain, problem string) string {
	var sb strings.Builder
	sb.WriteString(field("Domain", domain))
	sb.WriteString(field("Problem", problem))
	if p, ok := a.Workspace.ProblemFileFor(f); ok {
		sb.WriteString(field("Problem file", a.RelPath(p.URI)))
	} else {
		sb.WriteString(field("Problem file", paint(colorYellow, "unresolved")))
	}
	return sb.String()
}

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/syntax"
	"github.com/corey/pddl/internal/ports"
)

var (
	metaRe    = regexp.MustCompile(`(?i)^;;\s*!\s*(domain|problem)\s*:\s*(\S+)`)
	costRe    = regexp.MustCompile(`(?i)^;+\s*(?:cost|metric)\s*[=:]?\s*([-+]?\d+(?:\.\d+)?(?:e[-+]?\d+)?)`)
	stepRe    = regexp.MustCompile(`^(?:([-+]?\d+(?:\.\d+)?)\s*:\s*)?\(\s*([^\s()]+)([^()]*)\)\s*(?:\[\s*([-+]?\d+(?:\.\d+)?)\s*\])?\s*(?:;.*)?$`)
	eventRe   = regexp.MustCompile(`(?i)^([-+]?\d+(?:\.\d+)?)\s*:\s*(?:(start|end)\s+)?\(\s*([^\s()]+)([^()]*)\)\s*(?:#\s*(\d+))?\s*(?:;.*)?$`)
	lineSepRe = regexp.MustCompile(`\r?\n`)
)

// lineOffsets splits text into lines and returns each line with its offset.
func lineOffsets(text string) ([]string, []int) {
	lines := lineSepRe.Split(text, -1)
	offsets := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		offsets[i] = off
		off += len(l)
		if off < len(text) && text[off] == '\r' {
			off++
		}
		off++
	}
	return lines, offsets
}

// readMeta consumes a ";;!domain:" or ";;!problem:" line.
func readMeta(line string, domain, problem *string) bool {
	m := metaRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if strings.EqualFold(m[1], "domain") {
		*domain = strings.ToLower(m[2])
	} else {
		*problem = strings.ToLower(m[2])
	}
	return true
}

func splitArgs(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ParsePlan reads a plan: one "[TIME:] (action args) [[DURATION]]" step per
// line. Malformed lines are reported and skipped.
func ParsePlan(meta model.FileMeta, text string, pos ports.PositionResolver) *model.PlanInfo {
	p := &model.PlanInfo{}
	p.Load(meta, text, syntax.Parse(text), pos)

	lines, offsets := lineOffsets(text)
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case readMeta(line, &p.DomainName, &p.ProblemName):
			continue
		case strings.HasPrefix(line, ";"):
			if m := costRe.FindStringSubmatch(line); m != nil {
				p.Metric, _ = strconv.ParseFloat(m[1], 64)
				p.HasMetric = true
			}
			continue
		}

		m := stepRe.FindStringSubmatch(line)
		if m == nil {
			p.AddProblem(offsets[i], model.SeverityError, "malformed plan step %q", line)
			continue
		}
		step := model.PlanStep{
			Name: strings.ToLower(m[2]),
			Args: splitArgs(m[3]),
			Line: i,
		}
		if m[1] != "" {
			step.Time, _ = strconv.ParseFloat(m[1], 64)
			step.HasTime = true
		}
		if m[4] != "" {
			step.Duration, _ = strconv.ParseFloat(m[4], 64)
			step.HasDuration = true
		}
		p.Steps = append(p.Steps, step)
	}
	return p
}

// ParseHappenings reads a happenings trace. Each "end" must close an
// earlier "start" of the same action and counter.
func ParseHappenings(meta model.FileMeta, text string, pos ports.PositionResolver) *model.HappeningsInfo {
	h := &model.HappeningsInfo{}
	h.Load(meta, text, syntax.Parse(text), pos)

	open := make(map[string]int)
	lines, offsets := lineOffsets(text)
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case readMeta(line, &h.DomainName, &h.ProblemName):
			continue
		case strings.HasPrefix(line, ";"):
			continue
		}

		m := eventRe.FindStringSubmatch(line)
		if m == nil {
			h.AddProblem(offsets[i], model.SeverityError, "malformed happening %q", line)
			continue
		}
		ev := model.Happening{
			Name: strings.ToLower(m[3]),
			Args: splitArgs(m[4]),
			Line: i,
		}
		ev.Time, _ = strconv.ParseFloat(m[1], 64)
		if m[5] != "" {
			ev.Counter, _ = strconv.Atoi(m[5])
		}

		key := ev.FullActionName() + "#" + strconv.Itoa(ev.Counter)
		switch strings.ToLower(m[2]) {
		case "start":
			ev.Kind = model.Start
			open[key]++
		case "end":
			ev.Kind = model.End
			if open[key] == 0 {
				h.AddProblem(offsets[i], model.SeverityWarning, "end of %s without a matching start", ev.FullActionName())
			} else {
				open[key]--
			}
		}
		h.Happenings = append(h.Happenings, ev)
	}
	return h
}

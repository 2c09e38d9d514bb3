package model

// PlanStep is one line of a plan: "[TIME:] (action args) [[DURATION]]".
type PlanStep struct {
	Time        float64
	HasTime     bool
	Name        string // action name, lower case
	Args        []string
	Duration    float64
	HasDuration bool
	Line        int // zero-based
}

// FullActionName returns "name arg...".
func (s PlanStep) FullActionName() string { return Grounded(s.Name, s.Args...) }

// PlanInfo is the semantic model of a plan file.
type PlanInfo struct {
	FileBase

	DomainName  string
	ProblemName string
	Steps       []PlanStep
	Metric      float64
	HasMetric   bool
}

// Kind implements FileInfo.
func (*PlanInfo) Kind() Kind { return KindPlan }
func (*PlanInfo) isFileInfo() {}

// Makespan returns the latest step end time.
func (p *PlanInfo) Makespan() float64 {
	var end float64
	for _, s := range p.Steps {
		end = max(end, s.Time+s.Duration)
	}
	return end
}

// HappeningKind is the kind of a plan happening.
type HappeningKind int

const (
	Instantaneous HappeningKind = iota
	Start
	End
)

// String returns the trace keyword.
func (k HappeningKind) String() string {
	switch k {
	case Start:
		return "start"
	case End:
		return "end"
	default:
		return "instantaneous"
	}
}

// Happening is one line of a happenings trace:
// "TIME: [start|end] (action args) [#COUNTER]".
type Happening struct {
	Time    float64
	Kind    HappeningKind
	Name    string
	Args    []string
	Counter int
	Line    int
}

// FullActionName returns "name arg...".
func (h Happening) FullActionName() string { return Grounded(h.Name, h.Args...) }

// HappeningsInfo is the semantic model of a happenings trace.
type HappeningsInfo struct {
	FileBase

	DomainName  string
	ProblemName string
	Happenings  []Happening
}

// Kind implements FileInfo.
func (*HappeningsInfo) Kind() Kind { return KindHappenings }
func (*HappeningsInfo) isFileInfo() {}

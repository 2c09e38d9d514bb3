package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
)

var preParsingRe = regexp.MustCompile(`(?m)^\s*;;\s*!\s*pre-parsing\s*:\s*(\{.*\})\s*$`)

// PreParsingDirective returns the ";;!pre-parsing:" directive of text, or
// nil if there is none. Only the "command" type is understood.
func PreParsingDirective(text string) (*model.PreParsing, error) {
	m := preParsingRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	var pp model.PreParsing
	if err := json.Unmarshal([]byte(m[1]), &pp); err != nil {
		return nil, fmt.Errorf("pre-parsing directive: %w", err)
	}
	if !strings.EqualFold(pp.Type, "command") {
		return nil, fmt.Errorf("pre-parsing directive: unsupported type %q", pp.Type)
	}
	if pp.Command == "" {
		return nil, fmt.Errorf("pre-parsing directive: missing command")
	}
	return &pp, nil
}

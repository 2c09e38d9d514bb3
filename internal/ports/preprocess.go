package ports

import "context"

// Preprocessor transforms document text before it is tokenized. It backs
// the ";;!pre-parsing:" directive of templated problem files. The call may
// block on an external process; ctx cancellation must abort it.
type Preprocessor interface {
	// Transform returns the text to parse in place of input. command and
	// args come from the directive.
	Transform(ctx context.Context, command string, args []string, input string) (string, error)
}

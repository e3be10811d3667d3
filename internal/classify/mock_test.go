package classify

import (
	"context"
	"strings"

	"github.com/sells-group/prospect-cli/internal/llm"
)

// scriptedCompleter answers with the reply whose key appears in the prompt.
type scriptedCompleter struct {
	replies map[string]string
	err     error
	reqs    []llm.Request
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	for key, reply := range s.replies {
		if strings.Contains(req.Prompt, "Domain: "+key) {
			return &llm.Completion{Text: reply}, nil
		}
	}
	return &llm.Completion{Text: "no opinion"}, nil
}

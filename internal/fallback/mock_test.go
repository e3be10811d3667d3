package fallback

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/llm"
)

type fakeCompleter struct {
	text string
	err  error
	reqs []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.text}, nil
}

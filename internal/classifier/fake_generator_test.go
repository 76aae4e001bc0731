package classifier

import (
	"context"
	"sync"

	"baymax-vitals/internal/llm"
)

type generatorReply struct {
	text string
	err  error
}

// fakeGenerator 仅用于单元测试：按模型名返回预设回复
type fakeGenerator struct {
	mu      sync.Mutex
	replies map[string]generatorReply
	calls   []string
	prompts []string
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{replies: make(map[string]generatorReply)}
}

func (f *fakeGenerator) reply(model, text string, err error) *fakeGenerator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[model] = generatorReply{text: text, err: err}
	return f
}

func (f *fakeGenerator) GenerateText(_ context.Context, model, prompt string, _ llm.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, model)
	f.prompts = append(f.prompts, prompt)
	r, ok := f.replies[model]
	if !ok {
		return "", context.DeadlineExceeded
	}
	return r.text, r.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

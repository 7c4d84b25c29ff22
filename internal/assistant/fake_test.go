package assistant

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/resume-assistant/internal/llm"
	"github.com/jonathan/resume-assistant/internal/resume"
)

type chatFunc func(ctx context.Context, system string, messages []llm.Message) (string, error)

// fakeClient is an llm.Client with scripted responses.
type fakeClient struct {
	chat chatFunc
	json func(prompt string) (string, error)

	mu       sync.Mutex
	systems  []string
	messages [][]llm.Message
}

func replyWith(text string) *fakeClient {
	return &fakeClient{chat: func(context.Context, string, []llm.Message) (string, error) { return text, nil }}
}

func (f *fakeClient) Chat(ctx context.Context, system string, messages []llm.Message, _ llm.ModelTier) (string, error) {
	f.mu.Lock()
	f.systems = append(f.systems, system)
	f.messages = append(f.messages, messages)
	f.mu.Unlock()
	return f.chat(ctx, system, messages)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if f.json == nil {
		return "", errors.New("not scripted")
	}
	return f.json(prompt)
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) lastMessages() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return nil
	}
	return f.messages[len(f.messages)-1]
}

// memorySaver records saved documents.
type memorySaver struct {
	mu    sync.Mutex
	saved []resume.Document
	id    string
	err   error
}

func (m *memorySaver) Save(_ context.Context, doc resume.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, doc)
	return m.id, nil
}

// memoryStore is a memorySaver that can load, so it owns document IDs.
type memoryStore struct {
	memorySaver
}

func (m *memoryStore) Load(context.Context, string) (resume.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return resume.Document{}, errors.New("not found")
	}
	return m.saved[len(m.saved)-1], nil
}

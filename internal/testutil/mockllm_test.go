package testutil

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

func TestMockModel_PatternMatching(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := genkit.Init(ctx)
	if g == nil {
		t.Fatal("genkit.Init returned nil")
	}

	mock := NewMockModel("fallback")
	mock.AddResponse("weather", "It is sunny.")
	mock.Register(g)

	resp, err := genkit.Generate(ctx, g,
		ai.WithModelName("mock/chat-model"),
		ai.WithPrompt("What is the WEATHER like?"),
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := resp.Text(); got != "It is sunny." {
		t.Errorf("response = %q, want pattern match", got)
	}

	resp, err = genkit.Generate(ctx, g,
		ai.WithModelName("mock/chat-model"),
		ai.WithPrompt("Something unrelated."),
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := resp.Text(); got != "fallback" {
		t.Errorf("response = %q, want fallback", got)
	}

	if calls := mock.Calls(); len(calls) != 2 {
		t.Errorf("recorded %d calls, want 2", len(calls))
	}
}

func TestMockModel_StreamsWordByWord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := genkit.Init(ctx)
	if g == nil {
		t.Fatal("genkit.Init returned nil")
	}

	mock := NewMockModel("three separate words")
	mock.Register(g)

	var chunks []string
	_, err := genkit.Generate(ctx, g,
		ai.WithModelName("mock/chat-model"),
		ai.WithPrompt("anything"),
		ai.WithStreaming(func(_ context.Context, chunk *ai.ModelResponseChunk) error {
			for _, part := range chunk.Content {
				chunks = append(chunks, part.Text)
			}
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("streamed %d chunks, want 3: %q", len(chunks), chunks)
	}
	if got := strings.Join(chunks, ""); got != "three separate words" {
		t.Errorf("reassembled stream = %q", got)
	}
}

func TestDeterministicVector(t *testing.T) {
	t.Parallel()

	a := deterministicVector("same content", 16)
	b := deterministicVector("same content", 16)
	c := deterministicVector("other content", 16)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same content produced different vectors at %d", i)
		}
	}

	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different content produced identical vectors")
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("vector norm = %v, want unit length", math.Sqrt(norm))
	}
}

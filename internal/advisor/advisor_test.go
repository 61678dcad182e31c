package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/guregu/null/v6"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

type fakeCompleter struct {
	system, prompt string
	reply          string
	err            error
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	return f.reply, f.err
}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Symbol: "BTC-USD",
		Price:  64123.456,
		RSI14:  null.FloatFrom(41.27),
		SMA20:  null.FloatFrom(63000.04),
	}
}

func TestAsk_PassesContextAndQuestion(t *testing.T) {
	fc := &fakeCompleter{reply: "Trend laterale."}
	a := New(fc, "")
	got := a.Ask(context.Background(), testSnapshot(), "  conviene comprare?  ")
	if got != "Trend laterale." {
		t.Errorf("unexpected reply %q", got)
	}
	if fc.prompt != "conviene comprare?" {
		t.Errorf("unexpected prompt %q", fc.prompt)
	}
	want := "Role: Senior Financial Analyst. Context: Ticker BTC-USD, Price 64123.46, RSI 41.3, SMA20 63000.0. Respond in Italian. Keep it technical."
	if fc.system != want {
		t.Errorf("unexpected system instruction:\n got %q\nwant %q", fc.system, want)
	}
}

func TestAsk_ErrorBecomesReply(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("quota exceeded")}
	got := New(fc, "English").Ask(context.Background(), testSnapshot(), "hi")
	if got != "AI Error: quota exceeded" {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestAsk_EmptyQuestionAndMissingModel(t *testing.T) {
	if got := New(&fakeCompleter{}, "").Ask(context.Background(), nil, " "); !strings.HasPrefix(got, "AI Error") {
		t.Errorf("expected error reply, got %q", got)
	}
	if got := New(nil, "").Ask(context.Background(), nil, "hi"); !strings.HasPrefix(got, "AI Error") {
		t.Errorf("expected error reply, got %q", got)
	}
}

func TestContext_MissingIndicators(t *testing.T) {
	got := Context(&model.Snapshot{Symbol: "NEW", Price: 1})
	if got != "Ticker NEW, Price 1.00, RSI N/A, SMA20 N/A" {
		t.Errorf("unexpected context %q", got)
	}
	if Context(nil) != "No market data available" {
		t.Errorf("unexpected nil context")
	}
}

func TestNewGeminiCompleter_RequiresKey(t *testing.T) {
	if _, err := NewGeminiCompleter(context.Background(), "", ""); err == nil {
		t.Error("expected error without api key")
	}
}

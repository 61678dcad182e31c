// Package advisor answers user questions about the displayed ticker with a
// hosted language model.
package advisor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

// Completer produces a model reply for a system instruction and a prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Advisor wraps a Completer with the analyst persona and market context.
type Advisor struct {
	llm      Completer
	language string
}

// New creates an Advisor replying in language (e.g. "Italian").
func New(llm Completer, language string) *Advisor {
	if language == "" {
		language = "Italian"
	}
	return &Advisor{llm: llm, language: language}
}

// Context renders the snapshot the way it is handed to the model.
func Context(snap *model.Snapshot) string {
	if snap == nil || snap.Symbol == "" {
		return "No market data available"
	}
	return fmt.Sprintf("Ticker %s, Price %.2f, RSI %s, SMA20 %s",
		snap.Symbol, snap.Price, formatNullable(snap.RSI14.Valid, snap.RSI14.Float64),
		formatNullable(snap.SMA20.Valid, snap.SMA20.Float64))
}

func formatNullable(valid bool, v float64) string {
	if !valid {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", v)
}

// SystemInstruction builds the persona prompt for a snapshot.
func (a *Advisor) SystemInstruction(snap *model.Snapshot) string {
	return fmt.Sprintf("Role: Senior Financial Analyst. Context: %s. Respond in %s. Keep it technical.",
		Context(snap), a.language)
}

// Ask returns the model reply. Failures come back as an "AI Error: ..."
// reply so the conversation can carry on.
func (a *Advisor) Ask(ctx context.Context, snap *model.Snapshot, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return "AI Error: empty question"
	}
	if a.llm == nil {
		return "AI Error: advisor not configured"
	}
	reply, err := a.llm.Complete(ctx, a.SystemInstruction(snap), question)
	if err != nil {
		log.Printf("[WARN] advisor completion failed: %v", err)
		return fmt.Sprintf("AI Error: %v", err)
	}
	return reply
}

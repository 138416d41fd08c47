// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/llm"
)

// UnavailablePrefix starts the synthesis text when the capability failed.
const UnavailablePrefix = "Synthesis unavailable: "

var errEmptyReport = errors.New("capability returned an empty report")

// Synthesizer writes the final report from a prompt built by BuildPrompt.
type Synthesizer struct {
	Capability llm.Capability

	// Instructions overrides the report contract; empty means Instructions.
	Instructions string

	Logger *zap.Logger
}

func (s *Synthesizer) instructions() string {
	if s != nil && s.Instructions != "" {
		return s.Instructions
	}
	return Instructions
}

// Synthesize returns the report text. Any failure, including a missing
// capability, is folded into a "Synthesis unavailable: <err>" text.
func (s *Synthesizer) Synthesize(ctx context.Context, prompt string) string {
	var c llm.Capability
	if s != nil {
		c = s.Capability
	}
	if c == nil {
		return UnavailablePrefix + llm.ErrNoCapability.Error()
	}
	text, err := c.Invoke(ctx, s.instructions()+"\n\n"+prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyReport
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("synthesis failed", zap.Error(err))
		}
		return UnavailablePrefix + err.Error()
	}
	return strings.TrimSpace(text)
}

// Unavailable reports whether text is a failed synthesis rather than a report.
func Unavailable(text string) bool {
	return strings.HasPrefix(text, UnavailablePrefix)
}

// Validator returns the validator matching this synthesizer's contract.
func (s *Synthesizer) Validator() Validator {
	return Validator{Instructions: s.instructions()}
}

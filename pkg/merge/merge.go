// Package merge decides what happens to a file whose proposed content
// differs from the system copy. Only whole-file decisions exist: keep the
// system copy or replace it.
package merge

import (
	"context"
	"fmt"

	"github.com/andisab/mise-en-place/pkg/diff"
	"github.com/andisab/mise-en-place/pkg/types"
)

// Prompt is what a decider sees for one differing file
type Prompt struct {
	Source      string
	Destination string
	Status      types.FileStatus
	Diff        diff.Result
	// Round counts how many times this file has been shown, from 1.
	Round int
}

// Decider chooses a decision for one prompt. Implementations may block on
// user input; they should return ctx.Err() when ctx is cancelled.
type Decider interface {
	Decide(ctx context.Context, p Prompt) (types.Decision, error)
}

// DeciderFunc adapts a function to Decider
type DeciderFunc func(ctx context.Context, p Prompt) (types.Decision, error)

// Decide calls f
func (f DeciderFunc) Decide(ctx context.Context, p Prompt) (types.Decision, error) {
	return f(ctx, p)
}

// Always returns the same decision for every prompt
func Always(d types.Decision) Decider {
	return DeciderFunc(func(ctx context.Context, _ Prompt) (types.Decision, error) {
		if err := ctx.Err(); err != nil {
			return types.DecisionNone, err
		}
		return d, nil
	})
}

// SequenceDecider replays decisions in order. Once exhausted it returns
// the fallback.
type SequenceDecider struct {
	decisions []types.Decision
	fallback  types.Decision
	next      int
	prompts   []Prompt
}

// Sequence creates a decider replaying decisions, then keeping everything
func Sequence(decisions ...types.Decision) *SequenceDecider {
	return &SequenceDecider{decisions: decisions, fallback: types.DecisionKeep}
}

// Decide returns the next recorded decision
func (s *SequenceDecider) Decide(ctx context.Context, p Prompt) (types.Decision, error) {
	if err := ctx.Err(); err != nil {
		return types.DecisionNone, err
	}
	s.prompts = append(s.prompts, p)
	if s.next >= len(s.decisions) {
		return s.fallback, nil
	}
	d := s.decisions[s.next]
	s.next++
	return d, nil
}

// Prompts returns every prompt seen so far
func (s *SequenceDecider) Prompts() []Prompt {
	return s.prompts
}

// ForStrategy returns the decider implied by a non-interactive strategy.
// Ask needs an interactive decider and returns nil unless force is set.
func ForStrategy(strategy types.Strategy, force bool) Decider {
	switch {
	case strategy == types.StrategyReplace, strategy == types.StrategyAsk && force:
		return Always(types.DecisionBackupAndReplace)
	case strategy == types.StrategySkip:
		return Always(types.DecisionKeep)
	default:
		return nil
	}
}

// ParseDecision maps a single key press or word to a decision. Empty input
// keeps the system copy.
func ParseDecision(input string) (types.Decision, error) {
	switch input {
	case "", "k", "K", "keep":
		return types.DecisionKeep, nil
	case "r", "R", "replace":
		return types.DecisionReplace, nil
	case "b", "B", "backup":
		return types.DecisionBackupAndReplace, nil
	case "v", "V", "view":
		return types.DecisionViewAgain, nil
	case "q", "Q", "quit":
		return types.DecisionQuit, nil
	default:
		return types.DecisionNone, fmt.Errorf("unknown choice %q", input)
	}
}

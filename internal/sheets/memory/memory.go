package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

// Appender keeps appended rows in memory, grouped by kind. Used by tests and
// by the worker's dry-run mode.
type Appender struct {
	mu   sync.Mutex
	rows map[core.Kind][][]any
}

var _ sheets.RowAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{rows: map[core.Kind][][]any{}}
}

func (a *Appender) AppendRow(_ context.Context, kind core.Kind, row []any) error {
	if !kind.IsValid() {
		return fmt.Errorf("append row: unknown kind %q", kind)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows[kind] = append(a.rows[kind], append([]any(nil), row...))
	return nil
}

// Rows returns a copy of the rows appended for kind.
func (a *Appender) Rows(kind core.Kind) [][]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]any, 0, len(a.rows[kind]))
	for _, r := range a.rows[kind] {
		out = append(out, append([]any(nil), r...))
	}
	return out
}

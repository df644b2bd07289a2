package sheets

import (
	"context"

	"budgetbook/internal/core"
)

// Ports for outbound adapters.
type (
	// RowAppender appends one row to the tab that mirrors a record kind.
	RowAppender interface {
		AppendRow(ctx context.Context, kind core.Kind, row []any) error
	}
)

package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/sheets"
)

// MirrorWorker copies every created record into the spreadsheet tab for its
// kind.
type MirrorWorker struct {
	rows sheets.RowAppender
}

func NewMirrorWorker(rows sheets.RowAppender) *MirrorWorker {
	return &MirrorWorker{rows: rows}
}

// HandleRecordCreated converts the event's record into a row and appends it.
// Records that cannot be decoded are reported as amqp.ErrDiscard; append
// failures are returned as is so the delivery is retried.
func (w *MirrorWorker) HandleRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error {
	row, err := RowFor(msg.Kind, msg.Record)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", amqp.ErrDiscard, msg.Kind, msg.ID, err)
	}

	if err := w.rows.AppendRow(ctx, msg.Kind, row); err != nil {
		return fmt.Errorf("mirror %s %s: %w", msg.Kind, msg.ID, err)
	}

	slog.InfoContext(ctx, "Record mirrored to sheet",
		"kind", msg.Kind,
		"record_id", msg.ID,
		"owner_id", msg.OwnerID)
	return nil
}

// RowFor decodes a record body of the given kind into its sheet row.
func RowFor(kind core.Kind, body json.RawMessage) ([]any, error) {
	switch kind {
	case core.KindIncome:
		var r core.Income
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("decode income: %w", err)
		}
		return []any{cellText(r.ID), cellText(r.OwnerID), cellText(r.Source), r.Amount, formatTime(r.RecordedAt)}, nil
	case core.KindExpense:
		var r core.Expense
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("decode expense: %w", err)
		}
		category := ""
		if r.Category != nil {
			category = *r.Category
		}
		return []any{cellText(r.ID), cellText(r.OwnerID), cellText(r.Title), r.Amount, cellText(category), formatTime(r.RecordedAt)}, nil
	case core.KindGoal:
		var r core.Goal
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("decode goal: %w", err)
		}
		return []any{cellText(r.ID), cellText(r.OwnerID), cellText(r.GoalName), r.TargetAmount, r.Years, formatTime(r.CreatedAt)}, nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

// cellText keeps caller text literal in a USER_ENTERED append: a leading
// quote stops Sheets from parsing it as a formula.
func cellText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

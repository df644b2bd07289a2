package http

import (
	"context"
	"errors"
	"net/http"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
)

// RecordService is what the handlers need from a record service.
type RecordService[T core.Record[T]] interface {
	Create(ctx context.Context, rec T) (T, error)
	ListByOwner(ctx context.Context, ownerID string) ([]T, error)
}

// Validator turns a decoded JSON object into a record ready to be stored.
type Validator[T core.Record[T]] func(raw map[string]any) (T, error)

// handleCreate decodes, validates and stores one record. Every failure on
// this path, store failures included, answers 400 with the error message.
func handleCreate[T core.Record[T]](svc RecordService[T], validate Validator[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var zero T
		logger := applog.FromContext(ctx).WithComponent(applog.ComponentRecords)

		raw, err := DecodeJSONObject(w, r)
		if err != nil {
			status := http.StatusBadRequest
			var reqErr *RequestError
			if errors.As(err, &reqErr) {
				status = reqErr.Status
			}
			logger.WarnContext(ctx, "Rejected request body",
				applog.NewFields().
					WithOperation(applog.OpCreate).
					WithRecord(zero.Kind().String(), "", "").
					WithError(err, applog.ErrorTypeValidation).
					ToSlice()...)
			ErrorResponse(status, err.Error()).Write(w)
			return
		}

		rec, err := validate(raw)
		if err != nil {
			logger.InfoContext(ctx, "Record failed validation",
				applog.NewFields().
					WithOperation(applog.OpValidate).
					WithRecord(zero.Kind().String(), "", "").
					WithError(err, applog.ErrorTypeValidation).
					ToSlice()...)
			BadRequestError(err.Error()).Write(w)
			return
		}

		created, err := svc.Create(ctx, rec)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create record",
				applog.NewFields().
					WithOperation(applog.OpCreate).
					WithRecord(rec.Kind().String(), "", rec.Owner()).
					WithError(err, applog.ErrorTypeDatabase).
					ToSlice()...)
			BadRequestError(err.Error()).Write(w)
			return
		}

		logger.InfoContext(ctx, "Record created",
			applog.NewFields().
				WithOperation(applog.OpCreate).
				WithRecord(created.Kind().String(), created.Identity(), created.Owner()).
				ToSlice()...)
		NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
	}
}

// handleList returns every record of one kind owned by the {ownerId} path
// segment. Store failures answer 500.
func handleList[T core.Record[T]](svc RecordService[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var zero T
		ownerID := r.PathValue("ownerId")
		logger := applog.FromContext(ctx).WithComponent(applog.ComponentRecords)

		recs, err := svc.ListByOwner(ctx, ownerID)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to list records",
				applog.NewFields().
					WithOperation(applog.OpList).
					WithRecord(zero.Kind().String(), "", ownerID).
					WithError(err, applog.ErrorTypeDatabase).
					ToSlice()...)
			InternalServerError(err.Error()).Write(w)
			return
		}
		if recs == nil {
			recs = []T{}
		}

		logger.DebugContext(ctx, "Records listed",
			applog.FieldKind, zero.Kind(),
			applog.FieldOwnerID, ownerID,
			applog.FieldCount, len(recs))
		NewJSONResponse().Body(recs).Write(w)
	}
}

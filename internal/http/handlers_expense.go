package http

import (
	"net/http"

	"budgetbook/internal/core"
)

func registerExpenseRoutes(mux *http.ServeMux, prefix string, svc RecordService[core.Expense], limit func(http.Handler) http.Handler) {
	mux.Handle("POST "+prefix+"/expenses", limit(handleCreate(svc, core.ValidateExpense)))
	mux.Handle("GET "+prefix+"/expenses/{ownerId}", handleList(svc))
}

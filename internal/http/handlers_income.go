package http

import (
	"net/http"

	"budgetbook/internal/core"
)

func registerIncomeRoutes(mux *http.ServeMux, prefix string, svc RecordService[core.Income], limit func(http.Handler) http.Handler) {
	mux.Handle("POST "+prefix+"/incomes", limit(handleCreate(svc, core.ValidateIncome)))
	mux.Handle("GET "+prefix+"/incomes/{ownerId}", handleList(svc))
}

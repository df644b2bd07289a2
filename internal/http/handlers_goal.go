package http

import (
	"net/http"

	"budgetbook/internal/core"
)

func registerGoalRoutes(mux *http.ServeMux, prefix string, svc RecordService[core.Goal], limit func(http.Handler) http.Handler) {
	mux.Handle("POST "+prefix+"/goals", limit(handleCreate(svc, core.ValidateGoal)))
	mux.Handle("GET "+prefix+"/goals/{ownerId}", handleList(svc))
}

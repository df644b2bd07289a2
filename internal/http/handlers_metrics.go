package http

import (
	"fmt"
	"net/http"
	"time"

	"budgetbook/internal/core"
)

// recordStats is implemented by record services that count their work.
type recordStats interface {
	CreatedCount() int64
	CachedLists() int
}

// handleMetrics reports request, security and record counters in the
// Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_request_duration_microseconds_avg Average request duration\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_microseconds_avg gauge\n")
	fmt.Fprintf(w, "http_request_duration_microseconds_avg %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP rate_limit_active_clients Clients tracked by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_active_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_active_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP security_suspicious_requests_total Requests flagged as suspicious\n")
	fmt.Fprintf(w, "# TYPE security_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "security_suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	stats := s.recordStats()

	fmt.Fprintf(w, "# HELP records_created_total Records stored since start\n")
	fmt.Fprintf(w, "# TYPE records_created_total counter\n")
	for _, k := range core.Kinds() {
		if st, ok := stats[k]; ok {
			fmt.Fprintf(w, "records_created_total{kind=%q} %d\n", k, st.CreatedCount())
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP list_cache_entries Owner lists held in the read cache\n")
	fmt.Fprintf(w, "# TYPE list_cache_entries gauge\n")
	for _, k := range core.Kinds() {
		if st, ok := stats[k]; ok {
			fmt.Fprintf(w, "list_cache_entries{kind=%q} %d\n", k, st.CachedLists())
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP uptime_seconds Time since the server started\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
}

func (s *Server) recordStats() map[core.Kind]recordStats {
	out := make(map[core.Kind]recordStats, 3)
	for k, svc := range map[core.Kind]any{
		core.KindIncome:  s.services.Incomes,
		core.KindExpense: s.services.Expenses,
		core.KindGoal:    s.services.Goals,
	} {
		if st, ok := svc.(recordStats); ok {
			out[k] = st
		}
	}
	return out
}

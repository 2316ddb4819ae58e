// Package observability содержит метрики Prometheus сервиса.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

var (
	// ApplicantsSubmitted считает успешно принятые заявки.
	ApplicantsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenjobs_applicants_submitted_total",
		Help: "Total number of accepted directory applications",
	})

	// ApplicantsRejectedAtIntake считает заявки, отклоненные на проверке формы.
	ApplicantsRejectedAtIntake = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenjobs_applicants_intake_failures_total",
		Help: "Applications refused at intake by reason",
	}, []string{"reason"})

	// ApplicantTransitions считает переходы статусов заявок.
	ApplicantTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenjobs_applicant_transitions_total",
		Help: "Applicant status transitions by kind",
	}, []string{"transition"})

	// Notifications считает письма по событию и результату.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenjobs_notifications_total",
		Help: "Notification emails by event and result",
	}, []string{"event", "result"})

	// CacheRequests - обращения к кэшу статистики (hit/miss/error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenjobs_cache_requests_total",
		Help: "Statistics cache lookups by result",
	}, []string{"result"})

	// RedisErrors - ошибки Redis по команде.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenjobs_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenjobs_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "greenjobs_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// ObserveHTTP записывает запрос. route - шаблон маршрута gin, не сырой путь.
func ObserveHTTP(route, method string, status int, started time.Time) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(time.Since(started).Seconds())
}

// NotificationResult учитывает результат отправки письма
func NotificationResult(event, result string) {
	Notifications.WithLabelValues(event, result).Inc()
}

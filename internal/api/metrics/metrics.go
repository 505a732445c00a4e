// Package metrics defines and registers all custom Prometheus metrics for
// the CentralAuth identity service. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "centralauth"

// ── Authority metrics ─────────────────────────────────────────────────────────

// LoginsTotal counts login attempts that produced a token pair.
// Label:
//   - result: "success" (failed attempts are not labelled by cause; the
//     metric must not leak account existence)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of successful logins.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts refresh outcomes.
// Label:
//   - result: "success", "invalid", "expired", or "lost_race"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of refresh attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// TokenReuseDetectedTotal counts presentations of already-rotated refresh
// tokens. Each hit triggers a full revocation of the owner's sessions.
var TokenReuseDetectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_reuse_detected_total",
		Help:      "Total number of refresh-token replay detections.",
	},
)

// SessionsRevokedTotal counts sessions moved to the revoked state, whether by
// rotation, logout, logout-all, or reuse response.
var SessionsRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of sessions revoked.",
	},
)

// SessionsSweptTotal counts sessions hard-deleted by the retention sweep.
var SessionsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired sessions deleted by the retention sweep.",
	},
)

// ── Registry metrics ──────────────────────────────────────────────────────────

// ClientsCreatedTotal counts newly registered OAuth clients.
// Label:
//   - kind: "public" or "confidential"
var ClientsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_created_total",
		Help:      "Total number of OAuth clients created, by kind.",
	},
	[]string{"kind"},
)

// RateLimitRejectionsTotal counts requests rejected by the Redis rate limiter.
// Label:
//   - scope: limiter scope, e.g. "login" or "secret_recovery"
var RateLimitRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"scope"},
)

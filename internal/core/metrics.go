package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platform_oauth_tokens_issued_total",
		Help: "Access tokens issued, by grant type.",
	}, []string{"grant_type"})

	rateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "platform_rate_limit_rejections_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

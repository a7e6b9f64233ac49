package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsGranted,
		subscriptionsExpiredTotal,
	)
}

var (
	subscriptionsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_granted_total",
			Help: "Subscriptions created or extended after a verified payment.",
		},
		[]string{"kind"}, // 'created', 'extended'
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions flipped to expired by the expiry sweep.",
		},
	)
)

func IncSubscriptionGranted(kind string) {
	subscriptionsGranted.WithLabelValues(norm(kind)).Inc()
}

func IncSubscriptionsExpired(count int) {
	subscriptionsExpiredTotal.Add(float64(count))
}

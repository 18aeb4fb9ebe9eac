package waitlist

import "github.com/prometheus/client_golang/prometheus"

type signupMetrics struct {
	signups       *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// newSignupMetrics registers the domain counters. A nil registerer
// still yields working (unexported) counters, which keeps tests and
// metrics-disabled deployments free of registration plumbing.
func newSignupMetrics(reg prometheus.Registerer) *signupMetrics {
	m := &signupMetrics{
		signups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_signups_total",
				Help: "Waitlist enrollment attempts by outcome.",
			},
			[]string{"outcome"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_notifications_total",
				Help: "Welcome email dispatch attempts by result.",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.signups, m.notifications)
	}

	return m
}

func (m *signupMetrics) recordSignup(outcome string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(outcome).Inc()
}

func (m *signupMetrics) recordNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

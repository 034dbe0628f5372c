package recommend

import "github.com/prometheus/client_golang/prometheus"

var (
	RecommendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deckrec_recommend_duration_seconds",
		Help:    "Wall time of one recommendation call by algorithm.",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})

	RecommendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deckrec_recommend_total",
		Help: "Recommendation calls by algorithm and outcome.",
	}, []string{"algorithm", "outcome"})

	EvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deckrec_deck_evaluations_total",
		Help: "Decks evaluated by the deck calculator, memo hits excluded.",
	})

	PriorityRounds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "deckrec_priority_rounds",
		Help:    "Card priority rounds needed per recommendation call.",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	})
)

// Collectors lists every recommendation metric for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{RecommendDuration, RecommendTotal, EvaluationsTotal, PriorityRounds}
}

// RegisterMetrics registers the recommendation metrics with r.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

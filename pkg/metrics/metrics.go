package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quotecatalog"

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultEmpty   = "empty"
)

// Quoting records catalog, search and quotation activity. A nil *Quoting or
// one built without a registerer drops every observation.
type Quoting struct {
	reloadDuration *prometheus.HistogramVec
	reloads        *prometheus.CounterVec
	products       *prometheus.GaugeVec
	droppedRows    *prometheus.GaugeVec
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	quotations     *prometheus.CounterVec
	quotedAmount   prometheus.Histogram
	documents      *prometheus.CounterVec
}

// NewQuoting registers the collectors on reg.
func NewQuoting(reg prometheus.Registerer) *Quoting {
	if reg == nil {
		return &Quoting{}
	}
	q := &Quoting{
		reloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_reload_duration_seconds",
			Help:      "Duration of price list loads in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Price list loads by outcome.",
		}, []string{"source", "result"}),
		products: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Products in the active catalog.",
		}, []string{"catalog"}),
		droppedRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_dropped_rows",
			Help:      "Rows skipped while building the active catalog.",
		}, []string{"catalog"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Catalog searches by outcome.",
		}, []string{"result"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of catalog searches in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		quotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotations_total",
			Help:      "Quotation attempts by outcome.",
		}, []string{"result"}),
		quotedAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quotation_total_amount",
			Help:      "Grand total of generated quotations.",
			Buckets:   prometheus.ExponentialBuckets(10000, 4, 10),
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Rendered quotation documents by format and outcome.",
		}, []string{"format", "result"}),
	}
	reg.MustRegister(q.reloadDuration, q.reloads, q.products, q.droppedRows,
		q.searches, q.searchDuration, q.quotations, q.quotedAmount, q.documents)
	return q
}

// ObserveReload records one catalog load from source.
func (q *Quoting) ObserveReload(source string, duration time.Duration, err error) {
	if q == nil || q.reloads == nil {
		return
	}
	q.reloadDuration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
	q.reloads.WithLabelValues(normalizeLabel(source), outcome(err)).Inc()
}

// SetCatalogSize publishes the size of the active catalog.
func (q *Quoting) SetCatalogSize(catalog string, products, dropped int) {
	if q == nil || q.products == nil {
		return
	}
	q.products.WithLabelValues(normalizeLabel(catalog)).Set(float64(products))
	q.droppedRows.WithLabelValues(normalizeLabel(catalog)).Set(float64(dropped))
}

// ObserveSearch records a search; result is one of the Result* labels.
func (q *Quoting) ObserveSearch(result string, duration time.Duration) {
	if q == nil || q.searches == nil {
		return
	}
	q.searches.WithLabelValues(normalizeLabel(result)).Inc()
	q.searchDuration.Observe(duration.Seconds())
}

// ObserveQuotation records a quotation attempt and, on success, its total.
func (q *Quoting) ObserveQuotation(total float64, err error) {
	if q == nil || q.quotations == nil {
		return
	}
	q.quotations.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		q.quotedAmount.Observe(total)
	}
}

func (q *Quoting) ObserveDocument(format string, err error) {
	if q == nil || q.documents == nil {
		return
	}
	q.documents.WithLabelValues(normalizeLabel(format), outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogBooks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookshelf",
		Name:      "catalog_books",
		Help:      "Number of records in the catalog.",
	})

	booksAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bookshelf",
		Name:      "books_added_total",
		Help:      "Records added since the process started.",
	})
)

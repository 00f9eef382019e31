package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
)

// Результат успешной операции в метке result.
const resultOK = "ok"

// ServiceMetrics содержит метрики сервисных операций ядра.
type ServiceMetrics struct {
	// Счётчик операций с меткой результата (ok или категория ошибки).
	operations *prometheus.CounterVec
	// Гистограмма времени выполнения операций.
	duration *prometheus.HistogramVec
}

// NewServiceMetrics создаёт метрики, зарегистрированные в глобальном registry.
func NewServiceMetrics() *ServiceMetrics {
	return newServiceMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newServiceMetricsWithRegisterer(registerer prometheus.Registerer) *ServiceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ServiceMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "comptoirs_operations_total",
			Help: "Total number of service operations by result kind",
		}, []string{"operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "comptoirs_operation_duration_seconds",
			Help:    "Duration of service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}
}

// Observe фиксирует исход и длительность одной сервисной операции.
// Метка результата выводится из категории ошибки.
func (m *ServiceMetrics) Observe(operation string, err error, elapsed time.Duration) {
	result := resultOK
	if err != nil {
		result = string(domain.KindOf(err))
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	Namespace = "sql2dw"
	jobLabel  = "job"
)

type Metrics struct {
	jobNumGauge         prometheus.Gauge
	jobSucceededCounter *prometheus.CounterVec
	jobFailedCounter    *prometheus.CounterVec
	resultRowsCounter   *prometheus.CounterVec
	errorCounter        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := Metrics{}
	m.jobNumGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "job_num",
			Help:      "number of jobs in the job table",
		})
	m.jobSucceededCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "job_succeeded_count",
			Help:      "number of successful runs of each job",
		}, []string{jobLabel})
	m.jobFailedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "job_failed_count",
			Help:      "number of failed runs of each job",
		}, []string{jobLabel})
	m.resultRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "result_rows",
			Help:      "result rows read back from the destination of each job",
		}, []string{jobLabel})
	m.errorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "error_count",
			Help:      "Total error count during running jobs",
		}, []string{jobLabel})
	return &m
}

func (m *Metrics) SetJobNum(v float64) {
	m.jobNumGauge.Set(v)
}

func (m *Metrics) JobSucceeded(job string) {
	AddCounter(m.jobSucceededCounter, 1, job)
}

func (m *Metrics) JobFailed(job string) {
	AddCounter(m.jobFailedCounter, 1, job)
}

func (m *Metrics) AddResultRows(job string, v float64) {
	AddCounter(m.resultRowsCounter, v, job)
}

func (m *Metrics) AddError(job string) {
	AddCounter(m.errorCounter, 1, job)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.jobNumGauge,
		m.jobSucceededCounter,
		m.jobFailedCounter,
		m.resultRowsCounter,
		m.errorCounter,
	}
}

func (m *Metrics) RegisterTo(registry prometheus.Registerer) {
	registry.MustRegister(m.collectors()...)
}

func (m *Metrics) UnregisterFrom(registry prometheus.Registerer) {
	for _, c := range m.collectors() {
		registry.Unregister(c)
	}
}

// ReadCounter reports the current value of the counter for a specific job.
func ReadCounter(counterVec *prometheus.CounterVec, job string) float64 {
	if counterVec == nil {
		return math.NaN()
	}
	counter := counterVec.With(prometheus.Labels{jobLabel: job})
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		return math.NaN()
	}
	return metric.Counter.GetValue()
}

// AddCounter adds a counter for a specific job.
func AddCounter(counterVec *prometheus.CounterVec, v float64, job string) {
	if counterVec == nil {
		return
	}
	counterVec.With(prometheus.Labels{jobLabel: job}).Add(v)
}

// ReadGauge reports the current value of the gauge.
func ReadGauge(gauge prometheus.Gauge) float64 {
	if gauge == nil {
		return math.NaN()
	}
	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		return math.NaN()
	}
	return metric.Gauge.GetValue()
}

func (m *Metrics) JobNum() float64 {
	return ReadGauge(m.jobNumGauge)
}

func (m *Metrics) Succeeded(job string) float64 {
	return ReadCounter(m.jobSucceededCounter, job)
}

func (m *Metrics) Failed(job string) float64 {
	return ReadCounter(m.jobFailedCounter, job)
}

func (m *Metrics) ResultRows(job string) float64 {
	return ReadCounter(m.resultRowsCounter, job)
}

func (m *Metrics) Errors(job string) float64 {
	return ReadCounter(m.errorCounter, job)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// UploadMetrics records chunked-upload reassembly outcomes.
type UploadMetrics struct {
	chunks    *prometheus.CounterVec
	completed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	bytes     *prometheus.HistogramVec
}

// NewUploadMetrics registers the upload metrics on the provided registerer.
func NewUploadMetrics(reg prometheus.Registerer) *UploadMetrics {
	if reg == nil {
		return &UploadMetrics{}
	}
	chunks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upload_chunks_received_total",
		Help: "Chunks received, by upload kind.",
	}, []string{"kind"})
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upload_assemblies_completed_total",
		Help: "Uploads fully reassembled, by kind.",
	}, []string{"kind"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upload_assemblies_failed_total",
		Help: "Uploads rejected or abandoned during reassembly, by kind.",
	}, []string{"kind"})
	bytes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upload_assembled_bytes",
		Help:    "Size of fully reassembled uploads in bytes.",
		Buckets: prometheus.ExponentialBuckets(64*1024, 2, 10),
	}, []string{"kind"})
	reg.MustRegister(chunks, completed, failed, bytes)
	return &UploadMetrics{
		chunks:    chunks,
		completed: completed,
		failed:    failed,
		bytes:     bytes,
	}
}

// IncChunk counts one received chunk for the kind.
func (u *UploadMetrics) IncChunk(kind string) {
	if u == nil || u.chunks == nil {
		return
	}
	u.chunks.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncCompleted counts one finished reassembly and its total size.
func (u *UploadMetrics) IncCompleted(kind string, sizeBytes int64) {
	if u == nil || u.completed == nil {
		return
	}
	kind = normalizeLabel(kind)
	u.completed.WithLabelValues(kind).Inc()
	u.bytes.WithLabelValues(kind).Observe(float64(sizeBytes))
}

// IncFailed counts one rejected or abandoned reassembly.
func (u *UploadMetrics) IncFailed(kind string) {
	if u == nil || u.failed == nil {
		return
	}
	u.failed.WithLabelValues(normalizeLabel(kind)).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContentOps 统计各实体的读写次数与结果。
	ContentOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scc",
		Name:      "content_operations_total",
		Help:      "Content store operations by entity, operation and result.",
	}, []string{"entity", "op", "result"})

	// Uploads 统计上传结果。
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scc",
		Name:      "uploads_total",
		Help:      "Asset uploads by folder and result.",
	}, []string{"folder", "result"})

	// UploadBytes 累计成功上传的字节数。
	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scc",
		Name:      "upload_bytes_total",
		Help:      "Bytes written to the asset bucket.",
	})

	// PendingWrites 记录尚未同步到远端的本地写入数量。
	PendingWrites = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "scc",
		Name:      "pending_writes",
		Help:      "Records written locally and waiting for the remote store.",
	}, []string{"entity"})

	// LoginAttempts 统计后台登录结果。
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scc",
		Name:      "admin_login_attempts_total",
		Help:      "Admin login attempts by result.",
	}, []string{"result"})
)

// Result 将 error 映射为指标标签。
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveContent 记录一次内容操作。
func ObserveContent(entity, op string, err error) {
	ContentOps.WithLabelValues(entity, op, Result(err)).Inc()
}

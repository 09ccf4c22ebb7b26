package ginserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const indexPage = `<html>
<head><title>DSMR Exporter</title></head>
<body>
<h1>DSMR Exporter</h1>
<p><a href="/metrics">Metrics</a></p>
</body>
</html>
`

// Handler serves the exposition endpoint.
type Handler struct {
	metrics http.Handler
}

// NewHandler exposes everything g gathers. Collection errors are logged and
// the remaining metrics are still served.
func NewHandler(g prometheus.Gatherer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	opts := promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(log.Named("promhttp")),
		ErrorHandling: promhttp.ContinueOnError,
	}
	return &Handler{metrics: promhttp.HandlerFor(g, opts)}
}

// Metrics handles `GET /metrics`.
func (h *Handler) Metrics(c *gin.Context) {
	h.metrics.ServeHTTP(c.Writer, c.Request)
}

// Index handles `GET /` with a link to the metrics.
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

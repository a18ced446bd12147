package apiservice

import (
	"net"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pingcap-inc/sql2dw/pkg/metrics"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// GlobalInstance is the API service of the process. It records job stages
// and metrics even when it is not served.
var GlobalInstance = New()

type APIService struct {
	APIInfo *APIInfo
	Metric  *metrics.Metrics
	router  *gin.Engine
}

func New() *APIService {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	apiInfo := NewAPIInfo()
	apiInfo.registerRouter(r)

	metric := RegisterMetric(r)

	return &APIService{
		APIInfo: apiInfo,
		Metric:  metric,
		router:  r,
	}
}

// RegisterMetric registers the metric handler.
func RegisterMetric(router *gin.Engine) *metrics.Metrics {
	metric := metrics.NewMetrics()
	registry := prometheus.NewRegistry()
	metric.RegisterTo(registry)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	router.GET("/metrics", func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	})
	return metric
}

// ServeUntil runs the API on l until a signal is received from quit, then
// closes l.
func (service *APIService) ServeUntil(l net.Listener, quit <-chan os.Signal) {
	go func() {
		if err := service.router.RunListener(l); err != nil {
			log.Warn("API service stopped", zap.Error(err))
		}
	}()

	s := <-quit
	log.Info("Received exit signal, shutting down API service ...", zap.String("signal", s.String()))

	_ = l.Close()
}

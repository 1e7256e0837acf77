package metrics

import (
	coremetrics "github.com/autoride/autoride/core/metrics"
	"github.com/autoride/autoride/infra/logger"
)

// New builds the metrics sink stack from config: Prometheus and InfluxDB
// when enabled, combined through a MultiSink. With everything disabled a
// NopSink is returned.
func New(cfg coremetrics.Config, log logger.Logger) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink

	if cfg.PrometheusEnabled {
		prom, err := NewPromSink()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}

	switch len(sinks) {
	case 0:
		log.Infof("metrics disabled")
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}

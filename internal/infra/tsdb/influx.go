package tsdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	"go.uber.org/zap"
)

// NewClient builds an InfluxDB client writing with second precision and
// checks that the server is reachable.
func NewClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (influxdb2.Client, error) {
	opts := influxdb2.DefaultOptions().
		SetPrecision(time.Second).
		SetHTTPRequestTimeout(uint(30))

	client := influxdb2.NewClientWithOptions(cfg.Influx.URL, cfg.Influx.AuthToken(), opts)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ok, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping influx: %w", err)
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("influx at %s is not ready", cfg.Influx.URL)
	}

	log.Info("connected to influx",
		zap.String("bucket", cfg.Influx.Database),
		zap.String("measurement", cfg.Influx.Measurement))
	return client, nil
}

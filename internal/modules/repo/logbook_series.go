package repo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
)

// LogbookSeriesRepo keeps the time-indexed view of logbook entries: one
// point per entry, tagged by entry id, at the entry's timestamp.
type LogbookSeriesRepo interface {
	Write(ctx context.Context, e *model.LogbookEntry) error
	Delete(ctx context.Context, entryID string) error
}

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type seriesDeleter interface {
	DeleteWithName(ctx context.Context, orgName, bucketName string, start, stop time.Time, predicate string) error
}

// InfluxDB's valid timestamp range, so a delete reaches pre-1970 entries too
var (
	seriesStart = time.Unix(0, math.MinInt64+2).UTC()
	seriesStop  = time.Unix(0, math.MaxInt64-1).UTC()
)

type logbookSeries struct {
	w           pointWriter
	d           seriesDeleter
	org         string
	bucket      string
	measurement string
}

func NewLogbookSeriesRepo(client influxdb2.Client, org, bucket, measurement string) LogbookSeriesRepo {
	return newLogbookSeries(client.WriteAPIBlocking(org, bucket), client.DeleteAPI(), org, bucket, measurement)
}

func newLogbookSeries(w pointWriter, d seriesDeleter, org, bucket, measurement string) *logbookSeries {
	return &logbookSeries{w: w, d: d, org: org, bucket: bucket, measurement: measurement}
}

func (r *logbookSeries) Write(ctx context.Context, e *model.LogbookEntry) error {
	p := influxdb2.NewPoint(
		r.measurement,
		map[string]string{"id": e.ID},
		map[string]interface{}{
			"test_id":    e.TestID,
			"content":    e.Content,
			"operator":   e.Operator,
			"sensor_ids": strings.Join(e.SensorIDs, ","),
			"created_at": e.CreatedAt.Unix(),
		},
		e.Timestamp.UTC().Truncate(time.Second),
	)
	if err := r.w.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write logbook point: %w", err)
	}
	return nil
}

// Delete removes every point of the entry. Deleting an absent point is a no-op.
func (r *logbookSeries) Delete(ctx context.Context, entryID string) error {
	if err := r.d.DeleteWithName(ctx, r.org, r.bucket, seriesStart, seriesStop, r.predicate(entryID)); err != nil {
		return fmt.Errorf("delete logbook point: %w", err)
	}
	return nil
}

func (r *logbookSeries) predicate(entryID string) string {
	return fmt.Sprintf(`_measurement="%s" AND id="%s"`, escapePredicate(r.measurement), escapePredicate(entryID))
}

func escapePredicate(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

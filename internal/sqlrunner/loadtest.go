package sqlrunner

import (
	"context"
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/roshangit23/ReadyTestAPI/internal/logging"
)

// Histogram range in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = int64(time.Hour / time.Microsecond)
	histogramSigFigs = 3
)

// LoadReport summarizes the latencies of a load test.
type LoadReport struct {
	Executions int64
	Total      time.Duration
	Min        time.Duration
	Max        time.Duration
	Mean       time.Duration
	StdDev     time.Duration
	P50        time.Duration
	P90        time.Duration
	P95        time.Duration
	P99        time.Duration
}

func (r *LoadReport) String() string {
	return fmt.Sprintf("%d executions in %s (min %s, p50 %s, p95 %s, p99 %s, max %s)",
		r.Executions, r.Total, r.Min, r.P50, r.P95, r.P99, r.Max)
}

// LoadTest executes statement n times back to back and records each
// execution's latency. The first failure ends the run.
func (e *Executor) LoadTest(ctx context.Context, statement string, n int) (*LoadReport, error) {
	if n <= 0 {
		return nil, fail("load test", statement, fmt.Errorf("executions must be positive, got %d", n))
	}

	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	start := time.Now()

	for i := 0; i < n; i++ {
		elapsed, err := e.ExecutionTime(ctx, statement)
		if err != nil {
			return nil, err
		}
		micros := elapsed.Microseconds()
		if micros > histogramMax {
			micros = histogramMax
		}
		if err := hist.RecordValue(micros); err != nil {
			return nil, fail("load test", statement, err)
		}
	}

	report := &LoadReport{
		Executions: hist.TotalCount(),
		Total:      time.Since(start),
		Min:        time.Duration(hist.Min()) * time.Microsecond,
		Max:        time.Duration(hist.Max()) * time.Microsecond,
		Mean:       time.Duration(hist.Mean()) * time.Microsecond,
		StdDev:     time.Duration(hist.StdDev()) * time.Microsecond,
		P50:        time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond,
		P90:        time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:        time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:        time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
	}

	logging.Info("sql", "load test: %s", report)
	return report, nil
}

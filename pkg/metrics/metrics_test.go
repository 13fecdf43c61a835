package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRun("succeeded", ClassCounts{Created: 3, Updated: 1, Unchanged: 5}, 120*time.Millisecond)
	m.ObserveRun("partial", ClassCounts{Created: 2, DuplicateKeys: 1}, time.Second)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("succeeded")); got != 1 {
		t.Errorf("succeeded runs = %v, 期望 1", got)
	}
	if got := testutil.ToFloat64(m.classes.WithLabelValues("created")); got != 5 {
		t.Errorf("created classes = %v, 期望 5", got)
	}
	if got := testutil.ToFloat64(m.classes.WithLabelValues("duplicate_key")); got != 1 {
		t.Errorf("duplicate_key = %v, 期望 1", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("histogram 指标数 = %d, 期望 1", n)
	}
}

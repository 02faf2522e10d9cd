package metrics_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/internal/metrics"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/reconcile"
)

func TestRecorderObservesMatching(t *testing.T) {
	rec := metrics.New()
	m, err := reconcile.New(
		reconcile.WithLogger(logging.NewNopLogger()),
		reconcile.WithObserver(rec),
	)
	require.NoError(t, err)

	nsc := []enrollment.Record{
		{StudentID: "003A", CollegeID: "001A", Start: enrollment.MustParseDate("2016-08-22"), Status: enrollment.Attending},
		{StudentID: "003B", CollegeID: "001A", Start: enrollment.MustParseDate("2016-08-22"), Index: 1},
	}
	res, err := m.Match(context.Background(), nsc, nil)
	require.NoError(t, err)
	rec.ObserveResult(res)
	rec.ObserveRows("new_enr", 1)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, prometheus.WriteToTextfile(path, rec.Gatherer()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "enrollsync_students_total 2")
	assert.Contains(t, out, `enrollsync_case_matches_total{case="(NSC only) New attending enrollment",family="clearinghouse-only"} 1`)
	assert.Contains(t, out, `enrollsync_unmatched_records{side="clearinghouse"} 1`)
	assert.Contains(t, out, `enrollsync_output_rows{table="new_enr"} 1`)
}

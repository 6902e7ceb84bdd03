package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTaskRun(t *testing.T) {
	runs := testutil.ToFloat64(RefreshTaskRuns.WithLabelValues("test-task"))
	fails := testutil.ToFloat64(RefreshTaskFailures.WithLabelValues("test-task"))

	RecordTaskRun("test-task", 10*time.Millisecond, nil)
	RecordTaskRun("test-task", 10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(RefreshTaskRuns.WithLabelValues("test-task")); got != runs+2 {
		t.Fatalf("expected %v runs, got %v", runs+2, got)
	}
	if got := testutil.ToFloat64(RefreshTaskFailures.WithLabelValues("test-task")); got != fails+1 {
		t.Fatalf("expected %v failures, got %v", fails+1, got)
	}
}

func TestRecordSubmission(t *testing.T) {
	ok := testutil.ToFloat64(SubmissionsTotal.WithLabelValues("submitted"))
	failed := testutil.ToFloat64(SubmissionsTotal.WithLabelValues("failed"))

	RecordSubmission(true)
	RecordSubmission(false)
	RecordSubmission(false)

	if got := testutil.ToFloat64(SubmissionsTotal.WithLabelValues("submitted")); got != ok+1 {
		t.Fatalf("expected %v submitted, got %v", ok+1, got)
	}
	if got := testutil.ToFloat64(SubmissionsTotal.WithLabelValues("failed")); got != failed+2 {
		t.Fatalf("expected %v failed, got %v", failed+2, got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordAPIRequest("GET", "/health", 200, time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

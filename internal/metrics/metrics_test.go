package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	// Verify all metrics are initialized
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"TemplateApplications", m.TemplateApplications},
		{"ApplyDuration", m.ApplyDuration},
		{"TasksInstantiated", m.TasksInstantiated},
		{"TasksSkipped", m.TasksSkipped},
		{"TaskCommands", m.TaskCommands},
		{"CommandErrors", m.CommandErrors},
		{"SnoozeSweeps", m.SnoozeSweeps},
		{"SnoozesReverted", m.SnoozesReverted},
		{"RoutineTicks", m.RoutineTicks},
		{"RoutinesApplied", m.RoutinesApplied},
		{"RoutinesUpToDate", m.RoutinesUpToDate},
		{"HTTPRequests", m.HTTPRequests},
		{"HTTPDuration", m.HTTPDuration},
		{"Errors", m.Errors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestApplyMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.TemplateApplications.WithLabelValues("single-8w", "release", "true").Inc()
	m.ApplyDuration.WithLabelValues("single-8w").Observe(0.02)
	m.TasksInstantiated.WithLabelValues("single-8w").Add(12)
	m.TasksSkipped.WithLabelValues("single-8w").Add(3)

	m.TemplateApplications.WithLabelValues("ep-4w", "release", "false").Inc()

	if got := testutil.ToFloat64(m.TemplateApplications.WithLabelValues("single-8w", "release", "true")); got != 1 {
		t.Errorf("TemplateApplications single-8w/true = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TasksInstantiated.WithLabelValues("single-8w")); got != 12 {
		t.Errorf("TasksInstantiated = %v, want 12", got)
	}
	if got := testutil.ToFloat64(m.TasksSkipped.WithLabelValues("single-8w")); got != 3 {
		t.Errorf("TasksSkipped = %v, want 3", got)
	}
}

func TestTaskCommandMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.TaskCommands.WithLabelValues("complete", "true").Inc()
	m.TaskCommands.WithLabelValues("snooze", "false").Inc()
	m.CommandErrors.WithLabelValues("snooze", "TASK-002").Inc()

	if got := testutil.ToFloat64(m.TaskCommands.WithLabelValues("complete", "true")); got != 1 {
		t.Errorf("TaskCommands complete/true = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommandErrors.WithLabelValues("snooze", "TASK-002")); got != 1 {
		t.Errorf("CommandErrors = %v, want 1", got)
	}
}

func TestSchedulerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RoutineTicks.Inc()
	m.RoutinesApplied.Add(2)
	m.RoutinesUpToDate.Inc()
	m.SnoozeSweeps.Inc()
	m.SnoozesReverted.Add(4)

	if got := testutil.ToFloat64(m.RoutinesApplied); got != 2 {
		t.Errorf("RoutinesApplied = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SnoozesReverted); got != 4 {
		t.Errorf("SnoozesReverted = %v, want 4", got)
	}
}

func TestMetricsExport(t *testing.T) {
	reg, m := NewRegistry()

	m.TemplateApplications.WithLabelValues("single-8w", "release", "true").Inc()
	m.HTTPRequests.WithLabelValues("POST", "/api/templates/apply", "200").Inc()
	m.Errors.WithLabelValues("TASK-004").Inc()

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := make([]byte, 1<<20)
	n, _ := resp.Body.Read(body)
	output := string(body[:n])

	for _, want := range []string{
		"releasehub_template_applications_total",
		"releasehub_http_requests_total",
		"releasehub_errors_total",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("exported metrics missing %q", want)
		}
	}
}

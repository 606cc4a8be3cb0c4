package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

const (
	metricBootstrapTotal    = "guestboot.bootstrap.total"
	metricBootstrapDuration = "guestboot.bootstrap.duration_ms"
	metricProbeTotal        = "guestboot.probe.total"
)

// observeBootstrap writes the single record describing a run: which transport
// won and why every candidate ahead of it was passed over.
func (o *Orchestrator) observeBootstrap(ctx context.Context, operation string, report BootstrapReport, err error) {
	if o == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	rejected := report.Rejected()
	rejections := make([]string, 0, len(rejected))
	for _, result := range rejected {
		rejections = append(rejections, result.Candidate.ID+": "+result.Reason)
	}

	fields := map[string]any{
		"event_type":     operation,
		"status":         status,
		"run_id":         report.RunID,
		"platform":       report.Platform.String(),
		"transport":      report.Selected,
		"reason":         report.Reason,
		"rejected":       rejections,
		"rejected_count": len(rejections),
		"probed":         report.ProbedIDs(),
		"duration_ms":    report.Duration.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
		"platform":  report.Platform.String(),
	}
	if report.Selected != "" {
		tags["transport"] = report.Selected
	}
	o.recordCounter(ctx, metricBootstrapTotal, 1, tags)
	o.recordHistogram(ctx, metricBootstrapDuration, float64(report.Duration.Milliseconds()), tags)

	for _, result := range report.Results {
		probeStatus := "available"
		if !result.Available {
			probeStatus = "unavailable"
		}
		o.recordCounter(ctx, metricProbeTotal, 1, map[string]string{
			"transport": result.Candidate.ID,
			"status":    probeStatus,
		})
	}

	if err != nil {
		o.logError(ctx, "bootstrap failed", fields)
		return
	}
	o.logInfo(ctx, "bootstrap transport selected", fields)
}

func (o *Orchestrator) logInfo(ctx context.Context, message string, fields map[string]any) {
	o.logWithLevel(ctx, "info", message, fields)
}

func (o *Orchestrator) logWarn(ctx context.Context, message string, fields map[string]any) {
	o.logWithLevel(ctx, "warn", message, fields)
}

func (o *Orchestrator) logError(ctx context.Context, message string, fields map[string]any) {
	o.logWithLevel(ctx, "error", message, fields)
}

func (o *Orchestrator) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if o == nil || o.logger == nil {
		return
	}
	logger := o.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	var args []any
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	} else {
		args = flattenFields(fields)
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (o *Orchestrator) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if o == nil || o.metricsRecorder == nil {
		return
	}
	o.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (o *Orchestrator) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if o == nil || o.metricsRecorder == nil {
		return
	}
	o.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func elapsedSince(now func() time.Time, startedAt time.Time) time.Duration {
	if now == nil {
		now = time.Now
	}
	elapsed := now().Sub(startedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

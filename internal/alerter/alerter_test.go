package alerter

import (
	"strings"
	"testing"

	"ManetLens/internal/config"
	"ManetLens/internal/model"
)

type captureNotifier struct {
	subject string
	body    string
	sends   int
}

func (c *captureNotifier) Send(subject, body string) error {
	c.subject = subject
	c.body = body
	c.sends++
	return nil
}

func thresholdConfig(metric string, min float64) config.AlerterConfig {
	return config.AlerterConfig{
		Enabled: true,
		Rules:   []config.AlertRule{{Metric: metric, Min: min}},
	}
}

func TestEvaluateHealthFraction(t *testing.T) {
	a := New(thresholdConfig("health_fraction", 0.8), nil)
	report := &model.Report{
		Health: map[string]model.HealthStat{
			"0": {TotalSeries: 10, HealthySeries: 9, Fraction: 0.9},
			"1": {TotalSeries: 10, HealthySeries: 5, Fraction: 0.5},
			"2": {TotalSeries: 10, HealthySeries: 7, Fraction: 0.7},
		},
	}

	alerts := a.Evaluate(report)
	if len(alerts) != 2 {
		t.Fatalf("Got %d alerts, want 2", len(alerts))
	}
	if alerts[0].Node != "1" || alerts[1].Node != "2" {
		t.Errorf("Alert nodes = %s, %s; want 1, 2", alerts[0].Node, alerts[1].Node)
	}
	if alerts[0].Value != 0.5 || alerts[0].Threshold != 0.8 {
		t.Errorf("Alert = %+v, want value 0.5 threshold 0.8", alerts[0])
	}
}

func TestEvaluateSkipsUndefinedDeliveryRatio(t *testing.T) {
	a := New(thresholdConfig("delivery_ratio", 0.9), nil)
	report := &model.Report{
		QoS: map[string]model.QoSRecord{
			"0": {SentCount: 10, RecvCount: 4, DeliveryRatio: model.Defined(0.4)},
			"1": {SentCount: 0}, // never sent, ratio undefined
		},
	}

	alerts := a.Evaluate(report)
	if len(alerts) != 1 || alerts[0].Node != "0" {
		t.Fatalf("Alerts = %v, want exactly one for node 0", alerts)
	}
}

func TestEvaluateOnlineFractionWithoutConnectivity(t *testing.T) {
	a := New(thresholdConfig("online_fraction", 0.5), nil)

	if alerts := a.Evaluate(&model.Report{}); len(alerts) != 0 {
		t.Errorf("Got %d alerts without connectivity stats, want 0", len(alerts))
	}
}

func TestRunNotifiesOnce(t *testing.T) {
	notifier := &captureNotifier{}
	a := New(thresholdConfig("health_fraction", 0.8), notifier)
	report := &model.Report{
		Health: map[string]model.HealthStat{
			"0": {Fraction: 0.1},
			"1": {Fraction: 0.2},
		},
	}

	if err := a.Run(report); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if notifier.sends != 1 {
		t.Fatalf("Notifier sent %d messages, want 1 summary", notifier.sends)
	}
	if !strings.Contains(notifier.body, "node 0") || !strings.Contains(notifier.body, "node 1") {
		t.Errorf("Summary body missing nodes: %q", notifier.body)
	}
}

func TestRunQuietWhenHealthy(t *testing.T) {
	notifier := &captureNotifier{}
	a := New(thresholdConfig("health_fraction", 0.5), notifier)
	report := &model.Report{
		Health: map[string]model.HealthStat{"0": {Fraction: 1.0}},
	}

	if err := a.Run(report); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if notifier.sends != 0 {
		t.Errorf("Notifier sent %d messages for a healthy run, want 0", notifier.sends)
	}
}

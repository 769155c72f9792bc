// Package alerter checks a finished report against configured thresholds
// and notifies when a node falls below one.
package alerter

import (
	"fmt"
	"log"
	"strings"

	"ManetLens/internal/config"
	"ManetLens/internal/model"
)

// Notifier delivers an alert message.
type Notifier interface {
	Send(subject, body string) error
}

// Alert is one threshold violation.
type Alert struct {
	Metric    string
	Node      string
	Value     float64
	Threshold float64
}

func (a Alert) String() string {
	return fmt.Sprintf("node %s: %s %.4f below threshold %.4f", a.Node, a.Metric, a.Value, a.Threshold)
}

// Alerter evaluates alert rules against reports.
type Alerter struct {
	rules    []config.AlertRule
	notifier Notifier
}

// New creates an Alerter. The notifier may be nil; alerts are then only
// logged.
func New(cfg config.AlerterConfig, notifier Notifier) *Alerter {
	return &Alerter{rules: cfg.Rules, notifier: notifier}
}

// Evaluate checks every rule against the report and returns the violations,
// ordered by rule and node.
func (a *Alerter) Evaluate(report *model.Report) []Alert {
	var alerts []Alert
	for _, rule := range a.rules {
		alerts = append(alerts, evaluateRule(rule, report)...)
	}
	return alerts
}

// Run evaluates the report, logs every violation, and sends one summary
// notification when any rule fired.
func (a *Alerter) Run(report *model.Report) error {
	alerts := a.Evaluate(report)
	if len(alerts) == 0 {
		return nil
	}

	for _, alert := range alerts {
		log.Printf("ALERT: %s", alert)
	}
	if a.notifier == nil {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%d threshold violation(s) in the last analysis run:\r\n\r\n", len(alerts))
	for _, alert := range alerts {
		fmt.Fprintf(&body, "- %s\r\n", alert)
	}

	subject := fmt.Sprintf("[manetlens] %d alert(s)", len(alerts))
	if err := a.notifier.Send(subject, body.String()); err != nil {
		return fmt.Errorf("failed to send alert notification: %w", err)
	}
	return nil
}

func evaluateRule(rule config.AlertRule, report *model.Report) []Alert {
	var alerts []Alert
	add := func(node string, value float64) {
		if value < rule.Min {
			alerts = append(alerts, Alert{
				Metric: rule.Metric, Node: node, Value: value, Threshold: rule.Min,
			})
		}
	}

	switch rule.Metric {
	case "health_fraction":
		for _, node := range sortedNodes(report.Health) {
			add(node, report.Health[node].Fraction)
		}
	case "delivery_ratio":
		for _, node := range sortedNodes(report.QoS) {
			// Undefined ratios (a node that never sent) are not
			// violations; silence is judged by the health score.
			if v, ok := report.QoS[node].DeliveryRatio.Value(); ok {
				add(node, v)
			}
		}
	case "online_fraction":
		if report.Connectivity == nil {
			return nil
		}
		for _, node := range sortedNodes(report.Connectivity.OnlineFraction) {
			add(node, report.Connectivity.OnlineFraction[node])
		}
	}
	return alerts
}

func sortedNodes[V any](m map[string]V) []string {
	nodes := make([]string, 0, len(m))
	for node := range m {
		nodes = append(nodes, node)
	}
	model.SortNodeIDs(nodes, "")
	return nodes
}

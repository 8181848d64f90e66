// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and every metric it selects must be known.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/discogs-alert/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings
// are reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether there were no errors.
func (r *Result) Ok() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge appends other's findings to r.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// histogramSuffixes are the series a histogram family exposes.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Expr validates one PromQL expression. where identifies the source in
// findings.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: invalid PromQL %q: %v", where, expr, err)
		return res
	}

	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		if vs.Name == "" {
			res.warnf("%s: selector without a metric name in %q", where, expr)
			return nil
		}
		if !isKnown(vs.Name, known) {
			res.errorf("%s: unknown metric %q", where, vs.Name)
		}
		return nil
	})

	return res
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// panelJSON is the subset of the dashboard model the checks need. Going
// through JSON avoids depending on the SDK's query variant types.
type panelJSON struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Panels  []panelJSON `json:"panels"`
	Targets []struct {
		Expr string `json:"expr"`
	} `json:"targets"`
}

// Dashboard validates every query of every panel, including panels
// nested in rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	raw, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %v", err)
		return res
	}

	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		res.errorf("decoding dashboard: %v", err)
		return res
	}

	for _, p := range doc.Panels {
		checkPanel(&res, p, known)
	}
	return res
}

func checkPanel(res *Result, p panelJSON, known map[string]bool) {
	if p.Type == "row" {
		if len(p.Panels) == 0 {
			res.warnf("row %q has no panels", p.Title)
		}
		for _, inner := range p.Panels {
			checkPanel(res, inner, known)
		}
		return
	}

	if len(p.Targets) == 0 {
		res.warnf("panel %q has no queries", p.Title)
	}
	for i, t := range p.Targets {
		where := fmt.Sprintf("panel %q target %d", p.Title, i)
		if t.Expr == "" {
			res.errorf("%s: empty expression", where)
			continue
		}
		res.Merge(Expr(where, t.Expr, known))
	}
}

// Rules validates every expression in a PrometheusRule resource.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			res.Merge(Expr(fmt.Sprintf("%s/%s", g.Name, name), r.Expr, known))
		}
	}
	return res
}

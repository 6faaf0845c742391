package backtest

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"
)

// Report is an org-mode write-up of a run.
type Report struct {
	Summary
	Params  map[string]float64
	Created time.Time
	Notes   []string
}

type param struct {
	Name  string
	Value float64
}

// SortedParams lists the strategy parameters by name.
func (r Report) SortedParams() []param {
	out := make([]param, 0, len(r.Params))
	for k, v := range r.Params {
		out = append(out, param{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var reportFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(orgTemplate))

// WriteOrg renders r to w.
func (r Report) WriteOrg(w io.Writer) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteOrgFile renders r to path.
func (r Report) WriteOrgFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteOrg(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

const orgTemplate = `* BACKTEST: {{.Strategy}} {{range $i, $s := .Symbols}}{{if $i}},{{end}}{{$s}}{{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:BARS:        {{.Bars}}
:START_BAL:   {{printf "%.2f" .StartBalance}}
:END_BAL:     {{printf "%.2f" .EndBalance}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDDPct}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .WinRate)}}
:PROFIT_FAC:  {{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}(no losses){{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Strategy Parameters
| Parameter | Value |
|-----------+-------|
{{- range .SortedParams}}
| {{.Name}} | {{printf "%g" .Value}} |
{{- end}}

** Performance Summary
- Net P/L:          *{{printf "%.2f" .NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" .MaxDrawdown}} ({{printf "%.2f" .MaxDDPct}}%)*
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*
- Avg Trade:        *{{printf "%.2f" .AvgTrade}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"PumpScan/internal/domain/models"

	"github.com/olekukonko/tablewriter"
)

func renderAnalyses(w io.Writer, rows []*models.Analysis) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No analyses.")
		return
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Symbol", "Date", "Close", "Change", "Volume", "Ratio", "Risk", "Pattern"}),
	)
	for _, a := range rows {
		table.Append([]string{
			a.Record.Symbol,
			a.Record.Timestamp.Format("2006-01-02"),
			a.Record.ClosingPrice.StringFixed(2),
			fmt.Sprintf("%+.2f%%", a.Signals.PriceChangePercent),
			fmt.Sprintf("%d", a.Record.Volume),
			fmt.Sprintf("%.2fx", a.Signals.VolumeRatio),
			string(a.Classification.RiskLevel),
			string(a.Classification.Pattern),
		})
	}
	table.Render()
}

func renderStats(w io.Writer, st models.Stats) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Metric", "Count"}),
	)
	table.Append([]string{"Total", fmt.Sprintf("%d", st.Total)})
	table.Append([]string{"Symbols", fmt.Sprintf("%d", st.Symbols)})
	table.Append([]string{"High risk", fmt.Sprintf("%d", st.High)})
	table.Append([]string{"Medium risk", fmt.Sprintf("%d", st.Medium)})
	table.Append([]string{"Low risk", fmt.Sprintf("%d", st.Low)})

	patterns := make([]string, 0, len(st.ByPattern))
	for p := range st.ByPattern {
		patterns = append(patterns, string(p))
	}
	sort.Strings(patterns)
	for _, p := range patterns {
		table.Append([]string{"Pattern " + p, fmt.Sprintf("%d", st.ByPattern[models.Pattern(p)])})
	}
	table.Render()
}

func renderDetail(w io.Writer, a *models.Analysis) {
	fmt.Fprintf(w, "%s  %s  risk=%s pattern=%s\n",
		a.Record.Symbol,
		a.Record.Timestamp.Format("2006-01-02"),
		a.Classification.RiskLevel,
		a.Classification.Pattern,
	)
	fmt.Fprintf(w, "  close %s (prev %s), change %+.2f%%\n",
		a.Record.ClosingPrice.StringFixed(2),
		a.Record.PreviousClosing.StringFixed(2),
		a.Signals.PriceChangePercent,
	)
	fmt.Fprintf(w, "  volume %d vs average %.0f over %d days (%.2fx)\n",
		a.Record.Volume,
		a.Signals.AverageVolume,
		a.Signals.BaselineSamples,
		a.Signals.VolumeRatio,
	)
	if a.Signals.PriceDropAfterSpike {
		fmt.Fprintf(w, "  dropped %.2f%% after a volume spike\n", a.Signals.DropPercent)
	}
	if len(a.Classification.Explanation) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(a.Classification.Explanation, "; "))
	}
}

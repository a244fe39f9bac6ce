package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/services"
	"github.com/simlens/simlens/internal/source"
)

// report is everything printed for one parameter
type report struct {
	Overview   *services.Overview         `json:"overview"`
	Summary    *services.SummaryResult    `json:"summary,omitempty"`
	Histogram  *services.HistogramResult  `json:"histogram,omitempty"`
	TimeSeries *services.TimeSeriesResult `json:"timeseries,omitempty"`
}

func main() {
	file := flag.String("file", "./logs/wpsSimulator.csv", "Simulation CSV to analyse")
	param := flag.String("param", "", "Parameter (column) to analyse; empty lists the numeric parameters")
	agent := flag.String("agent", "", "Restrict to one agent (optional)")
	bins := flag.Int("bins", 10, "Histogram bins")
	asJSON := flag.Bool("json", false, "Print JSON instead of a table")
	export := flag.String("export", "", "Also export the dataset (csv, csv.sz, xlsx)")
	outDir := flag.String("out", "./exports", "Export directory")
	flag.Parse()

	ctx := context.Background()
	logger := logging.Nop()

	session := source.NewSession(source.NewFileSource(*file, dataset.DefaultOptions()), logger)
	if err := session.Reload(ctx); err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	analysis := services.NewAnalysisService(logger, session, config.DefaultConfig().Analysis)

	rep, err := build(ctx, analysis, *param, *agent, *bins)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatalf("Error: %v\n", err)
		}
	} else {
		if *param == "" {
			cat, err := analysis.Columns(ctx)
			if err != nil {
				log.Fatalf("Error: %v\n", err)
			}
			printCatalogue(os.Stdout, rep.Overview, cat)
		} else {
			printReport(os.Stdout, rep)
		}
	}

	if *export != "" {
		path, err := services.NewExportService(logger, session, *outDir).Save(ctx, *export)
		if err != nil {
			log.Fatalf("Error: %v\n", err)
		}
		fmt.Fprintf(os.Stderr, "exported %s\n", path)
	}
}

func build(ctx context.Context, analysis *services.AnalysisService, param, agent string, bins int) (*report, error) {
	ov, err := analysis.Overview(ctx)
	if err != nil {
		return nil, err
	}
	rep := &report{Overview: ov}
	if param == "" {
		return rep, nil
	}

	if rep.Summary, err = analysis.Summary(ctx, &services.SummaryRequest{Param: param, Agent: agent}); err != nil {
		return nil, err
	}
	if rep.Histogram, err = analysis.Histogram(ctx, &services.HistogramRequest{Param: param, Agent: agent, Bins: bins}); err != nil {
		return nil, err
	}
	if rep.TimeSeries, err = analysis.TimeSeries(ctx, &services.TimeSeriesRequest{Param: param, Agent: agent}); err != nil {
		return nil, err
	}
	return rep, nil
}

func printOverview(w io.Writer, ov *services.Overview) {
	fmt.Fprintf(w, "File:    %s\n", ov.Source.Location)
	fmt.Fprintf(w, "Rows:    %d\n", ov.Rows)
	fmt.Fprintf(w, "Columns: %d\n", ov.Columns)
	fmt.Fprintf(w, "Agents:  %d\n", ov.Agents)
	if ov.FirstDate != "" {
		fmt.Fprintf(w, "Dates:   %s .. %s\n", ov.FirstDate, ov.LastDate)
	}
}

func printCatalogue(w io.Writer, ov *services.Overview, cat *services.ColumnCatalogue) {
	printOverview(w, ov)
	fmt.Fprintln(w, "\nNumeric parameters:")
	for _, col := range cat.Numeric {
		fmt.Fprintf(w, "  %s\n", col)
	}
}

func printReport(w io.Writer, rep *report) {
	printOverview(w, rep.Overview)

	s := rep.Summary
	fmt.Fprintf(w, "\nParameter %q", s.Param)
	if s.Agent != "" {
		fmt.Fprintf(w, " (agent %s)", s.Agent)
	}
	fmt.Fprintf(w, ": %d values, %d nulls\n", s.Points, s.Nulls)
	if s.Message != "" {
		fmt.Fprintln(w, s.Message)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	st := s.Statistics
	fmt.Fprintf(tw, "avg\t%.4f\tmedian\t%.4f\n", st.Avg, st.Median)
	fmt.Fprintf(tw, "min\t%.4f\tmax\t%.4f\n", st.Min, st.Max)
	fmt.Fprintf(tw, "std dev\t%.4f\tvariance\t%.4f\n", st.StdDev, st.Variance)
	fmt.Fprintf(tw, "q1\t%.4f\tq3\t%.4f\n", st.Q1, st.Q3)
	fmt.Fprintf(tw, "skewness\t%.4f\tkurtosis\t%.4f\n", st.Skewness, st.Kurtosis)
	fmt.Fprintf(tw, "outliers\t%d\t%.0f%% CI\t[%.4f, %.4f]\n", len(st.Outliers),
		s.ConfidenceInterval.Level*100, s.ConfidenceInterval.Lower, s.ConfidenceInterval.Upper)
	_ = tw.Flush()

	fmt.Fprintln(w, "\nHistogram:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range rep.Histogram.Bins {
		fmt.Fprintf(tw, "  [%.4f, %.4f)\t%d\n", b.Start, b.End, b.Count)
	}
	_ = tw.Flush()

	r := rep.TimeSeries.Report
	fmt.Fprintln(w, "\nTrend:")
	fmt.Fprintf(w, "  %s %s (slope %.4f)\n", r.Trend.Strength, r.Trend.Direction, r.Trend.Slope)
	fmt.Fprintf(w, "  %s (%d reversals)\n", r.Cyclicality.Label, r.Cyclicality.Reversals)
	fmt.Fprintf(w, "  volatility %s (cv %.4f)\n", r.Volatility.Label, r.Volatility.CV)
	fmt.Fprintf(w, "  %d critical points, halves %.4f -> %.4f (%+.2f%%)\n", len(r.CriticalPoints),
		r.HalfSplit.FirstMean, r.HalfSplit.SecondMean, r.HalfSplit.PercentChange)
}

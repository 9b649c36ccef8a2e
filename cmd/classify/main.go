// Command classify runs readings through the indicator classifier and,
// optionally, the stability filter, without any network access.
//
// Usage:
//
//	go run ./cmd/classify -in reading.json
//	go run ./cmd/classify -replay -step 10s -in readings.json -format text
//
// A single reading is a JSON object using the same field names as the
// /api/classify endpoint. With -replay the input is an array of readings fed
// to the stability filter one per step on a simulated clock.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

var replayStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

type options struct {
	in             string
	replay         bool
	step           time.Duration
	minConsecutive int
	maxWait        time.Duration
	unit           string
	format         string
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "-", "input file, or - for stdin")
	flag.BoolVar(&opts.replay, "replay", false, "treat input as an array of readings and replay them through the stability filter")
	flag.DurationVar(&opts.step, "step", 10*time.Second, "simulated time between replayed readings")
	flag.IntVar(&opts.minConsecutive, "min-consecutive", domain.MinConsecutive, "observations needed to commit a band change")
	flag.DurationVar(&opts.maxWait, "max-wait", domain.MaxWait, "forced commit timeout for pending changes")
	flag.StringVar(&opts.unit, "unit", "C", "temperature unit of the input (C, F or K)")
	flag.StringVar(&opts.format, "format", "json", "output format: json or text")
	flag.Parse()

	if opts.format != "json" && opts.format != "text" {
		flag.Usage()
		os.Exit(2)
	}

	in := io.Reader(os.Stdin)
	if opts.in != "-" {
		f, err := os.Open(opts.in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if err := run(opts, in, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

type result struct {
	Bands           domain.Sample           `json:"bands"`
	KnownCount      int                     `json:"knownCount"`
	Ready           bool                    `json:"ready"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

type replayStep struct {
	Step       int                 `json:"step"`
	At         time.Time           `json:"at"`
	Raw        domain.Sample       `json:"raw"`
	Committed  domain.Sample       `json:"committed"`
	Changes    []domain.BandChange `json:"changes,omitempty"`
	KnownCount int                 `json:"knownCount"`
	Ready      bool                `json:"ready"`
}

type replayResult struct {
	Steps           []replayStep            `json:"steps"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

func run(opts options, in io.Reader, out io.Writer) error {
	unit := domain.TemperatureUnit(opts.unit)
	if opts.replay {
		var readings []domain.Reading
		if err := json.NewDecoder(in).Decode(&readings); err != nil {
			return fmt.Errorf("decode readings: %w", err)
		}
		res, err := replay(readings, unit, opts)
		if err != nil {
			return err
		}
		if opts.format == "text" {
			return writeReplayText(out, res)
		}
		return writeJSON(out, res)
	}

	var reading domain.Reading
	if err := json.NewDecoder(in).Decode(&reading); err != nil {
		return fmt.Errorf("decode reading: %w", err)
	}
	if err := normalize(&reading, unit); err != nil {
		return err
	}
	bands := domain.ClassifyReading(reading)
	known := domain.KnownCount(bands)
	res := result{
		Bands:           bands,
		KnownCount:      known,
		Ready:           known >= domain.ReadyThreshold,
		Recommendations: domain.Recommendations(bands, bands),
	}
	if opts.format == "text" {
		return writeBandsText(out, bands, res.Recommendations)
	}
	return writeJSON(out, res)
}

func replay(readings []domain.Reading, unit domain.TemperatureUnit, opts options) (replayResult, error) {
	clock := clockwork.NewFakeClockAt(replayStart)
	s := domain.NewStabilizer(opts.minConsecutive, opts.maxWait)
	s.Clock = clock
	var res replayResult
	var raw domain.Sample
	for i, r := range readings {
		if i > 0 {
			clock.Advance(opts.step)
		}
		if err := normalize(&r, unit); err != nil {
			return replayResult{}, fmt.Errorf("reading %d: %w", i, err)
		}
		raw = domain.ClassifyReading(r)
		changes := s.Apply(raw)
		committed := s.Committed()
		known := domain.KnownCount(committed)
		res.Steps = append(res.Steps, replayStep{
			Step:       i,
			At:         clock.Now(),
			Raw:        raw,
			Committed:  committed,
			Changes:    changes,
			KnownCount: known,
			Ready:      known >= domain.ReadyThreshold,
		})
	}
	res.Recommendations = domain.Recommendations(raw, s.Committed())
	return res, nil
}

func normalize(r *domain.Reading, unit domain.TemperatureUnit) error {
	c, err := domain.CelsiusFrom(r.TempC, unit)
	if err != nil {
		return err
	}
	r.TempC = c
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeBandsText(w io.Writer, bands domain.Sample, recs []domain.Recommendation) error {
	fmt.Fprintf(w, "%-18s %-8s\n", "INDICATOR", "LEVEL")
	for _, ind := range domain.Indicators {
		fmt.Fprintf(w, "%-18s %-8s\n", domain.Title(ind), bands[ind].Label)
	}
	fmt.Fprintf(w, "\nknown: %d/%d\n", domain.KnownCount(bands), len(domain.Indicators))
	for _, rec := range recs {
		if len(rec.Actions) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%s)\n", rec.Title, rec.Info.Label)
		for _, a := range rec.Actions {
			if _, err := fmt.Fprintf(w, "  - %s\n", a); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeReplayText(w io.Writer, res replayResult) error {
	for _, st := range res.Steps {
		fmt.Fprintf(w, "step %d at %s: known %d/%d ready=%t\n",
			st.Step, st.At.Format(time.RFC3339), st.KnownCount, len(domain.Indicators), st.Ready)
		for _, ch := range st.Changes {
			from := ch.From.Label
			if from == "" {
				from = "-"
			}
			if _, err := fmt.Fprintf(w, "  %-18s %s -> %s\n", domain.Title(ch.Indicator), from, ch.To.Label); err != nil {
				return err
			}
		}
	}
	return nil
}

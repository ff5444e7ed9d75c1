// opsweep_runner executes the canonical parameter sweeps for every operator
// family and precision mode, comparing each backend against the reference
// interpreter, and prints a summary table.
//
// Unlike the test suite, which keeps the reduced-precision modes on subsets of
// the canonical dimension sets, the runner sweeps the full sets, so it is also
// a way to observe how close each configuration sits to its tolerance.
//
// Example:
//
//	opsweep_runner -modes=Int8,Float16 -seed=17
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/opsweep/backends"
	"github.com/gomlx/opsweep/sweep"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	_ "github.com/gomlx/opsweep/backends/interp"
	_ "github.com/gomlx/opsweep/backends/parallel"
)

var (
	flagBackends = flag.String("backends", strings.Join(backends.Registered(), ","),
		"Comma-separated list of backends to compare against the reference interpreter.")
	flagModes = flag.String("modes", "Float,Float16,Int8",
		"Comma-separated list of candidate precision modes to sweep.")
	flagSeed = flag.Uint64("seed", 42,
		"Seed for the deterministic initialization of every network. The same seed reproduces the same pass/fail behavior.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %v. See 'opsweep_runner -help'.", flag.Args())
		os.Exit(2)
	}

	backendIDs := strings.Split(*flagBackends, ",")
	for _, id := range backendIDs {
		// Fail early on typos, before sweeping anything.
		must.M1(backends.New(id))
	}
	modes := parseModes(*flagModes)

	sweeps := sweep.Sweeps()
	total := 0
	for _, s := range sweeps {
		total += len(sweep.Expand(backendIDs, s.DimSets...)) * len(modes)
	}
	fmt.Printf("Sweeping %s configurations (backends: %s)\n",
		humanize.Comma(int64(total)), strings.Join(backendIDs, ", "))
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("sweeping"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish())

	var rows []summaryRow
	var failures []sweep.Record
	for _, s := range sweeps {
		for _, mode := range modes {
			row := summaryRow{op: s.Kind.String(), mode: mode.String(),
				tolerance: sweep.Tolerance(s.Kind, mode)}
			for _, config := range sweep.Expand(backendIDs, s.DimSets...) {
				record := runOne(s, config, mode, *flagSeed)
				_ = bar.Add(1)
				switch record.Outcome {
				case sweep.OutcomePass:
					row.passed++
				case sweep.OutcomeFail:
					row.failed++
					failures = append(failures, record)
				case sweep.OutcomeSkip:
					row.skipped++
				}
				row.maxDiff = max(row.maxDiff, record.MaxDiff)
			}
			rows = append(rows, row)
		}
	}
	_ = bar.Finish()

	printSummary(rows)
	for _, record := range failures {
		klog.Errorf("FAIL %s at %s: %v", record.Config, record.Mode, record.Err)
	}
	if len(failures) > 0 {
		os.Exit(1)
	}
}

func runOne(s sweep.Sweep, config sweep.Configuration, mode sweep.PrecisionMode, seed uint64) sweep.Record {
	record := sweep.Record{Config: config, Mode: mode, Tolerance: sweep.Tolerance(s.Kind, mode)}
	result, err := sweep.CompareAgainstReference(s.NewNet(config.Dims), config.Backend,
		sweep.Reference, mode, record.Tolerance, seed)
	record.MaxDiff = result.MaxDiff
	switch {
	case !result.Applicable:
		record.Outcome = sweep.OutcomeSkip
	case err != nil:
		record.Outcome = sweep.OutcomeFail
		record.Err = err
	default:
		record.Outcome = sweep.OutcomePass
	}
	return record
}

func parseModes(list string) []sweep.PrecisionMode {
	var modes []sweep.PrecisionMode
	for _, name := range strings.Split(list, ",") {
		found := false
		for _, mode := range sweep.Modes() {
			if strings.EqualFold(name, mode.String()) {
				modes = append(modes, mode)
				found = true
				break
			}
		}
		if !found {
			klog.Errorf("Unknown precision mode %q; known modes are Float, Float16 and Int8.", name)
			os.Exit(2)
		}
	}
	return modes
}

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ohofmann/seqval/config"
	"github.com/ohofmann/seqval/eval"
	"github.com/vertgenlab/gonomics/exception"
)

func evalUsage(evalFlags *flag.FlagSet) {
	fmt.Print(
		"eval - Compare observed per-position variant calls against a truth table\n\n" +
			"Usage:\n" +
			"  seqval eval [options] -c pipeline.yaml -region rt -stats variation_stats/1_bc2_outer_7.yaml\n\n" +
			"Options:\n")
	evalFlags.PrintDefaults()
}

func runEval(args []string) {
	var err error
	evalFlags := flag.NewFlagSet("eval", flag.ExitOnError)

	configFile := evalFlags.String("c", "", "Pipeline configuration file.")
	regionName := evalFlags.String("region", "", "Region to evaluate (e.g. gag, rt).")
	statsFile := evalFlags.String("stats", "", "Observed variation stats file for one barcode/run.")
	callThresh := evalFlags.Float64("call", -1, "Call threshold as 0-1 fraction. Defaults to the config's call_thresh.")
	truthThresh := evalFlags.Float64("truth", 0, "Distinct truth threshold as 0-1 fraction. Defaults to the call threshold.")
	verbose := evalFlags.Bool("v", false, "Print every discrepancy record, not just the summary.")

	err = evalFlags.Parse(args)
	exception.PanicOnErr(err)
	evalFlags.Usage = func() { evalUsage(evalFlags) }

	if *configFile == "" || *regionName == "" || *statsFile == "" {
		evalFlags.Usage()
		errExit("\nERROR: must have inputs for -c, -region, and -stats")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	reg, err := cfg.Region(*regionName)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	mapper, err := reg.Mapper()
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	expected, err := eval.ReadExpected(reg.Expected)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	observed, err := eval.ReadObserved(*statsFile)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	ev, err := eval.New(reg.Name, mapper, expected, observed)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if *callThresh < 0 {
		*callThresh = cfg.Algorithm.CallThresh
	}
	records := ev.Evaluate(eval.Thresholds{
		CallPercent:  *callThresh * 100,
		TruthPercent: *truthThresh * 100,
	})

	if *verbose {
		fmt.Println("position\tref_position\tbase\texpected\tobserved\tdelta\tclass")
		for _, r := range records {
			fmt.Printf("%d\t%d\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
				r.Position, r.RefPosition, r.Base, r.Expected, r.Observed, r.Delta, r.Class)
		}
	}

	fmt.Printf("region %s, call threshold %.4f\n", reg.Name, *callThresh)
	for _, line := range eval.Summarize(records) {
		fmt.Printf("% 8s:  Correct % 4d (%.1f%%); Wrong % 3d (%.1f%%)\n",
			line.Class, line.Correct, line.PercentCorrect, line.Wrong, line.PercentWrong)
	}

	cov := ev.Coverage()
	fmt.Printf("coverage: %d expected positions (%d unobserved), %d observed (%d untruthed, %d excluded)\n",
		cov.ExpectedPositions, cov.ExpectedUnobserved, cov.ObservedPositions, cov.ObservedUntruthed, cov.Excluded)
}

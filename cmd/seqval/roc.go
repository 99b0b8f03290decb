package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ohofmann/seqval/config"
	"github.com/ohofmann/seqval/eval"
	"github.com/ohofmann/seqval/roc"
	"github.com/ohofmann/seqval/sweep"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

func rocUsage(rocFlags *flag.FlagSet) {
	fmt.Print(
		"roc - Sweep call thresholds and build ROC curves for each configured pipeline variant\n\n" +
			"Usage:\n" +
			"  seqval roc [options] -c pipeline.yaml\n\n" +
			"Options:\n")
	rocFlags.PrintDefaults()
}

func runRoc(args []string) {
	var err error
	rocFlags := flag.NewFlagSet("roc", flag.ExitOnError)

	configFile := rocFlags.String("c", "", "Pipeline configuration file.")
	pointsOut := rocFlags.String("points", "stdout", "Output file for plot-ready (threshold, tpr, fpr) triples.")
	plotOut := rocFlags.String("plot", "", "Rendered chart file. Defaults to the config's roc_plot out_file.")
	preview := rocFlags.Bool("preview", false, "Print a terminal sketch of each curve.")

	err = rocFlags.Parse(args)
	exception.PanicOnErr(err)
	rocFlags.Usage = func() { rocUsage(rocFlags) }

	if *configFile == "" {
		rocFlags.Usage()
		errExit("\nERROR: must have input for -c")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	if len(cfg.ROCPlot.Curves) == 0 {
		log.Fatal("ERROR: no roc_plot curves configured")
	}

	reg, err := cfg.Region(cfg.ROCPlot.Region)
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

	combos, err := sweep.CrossProduct(cfg.SweepParams())
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	// the decision axis is call_thresh when swept, else kmer_thresh (the
	// caller's minimum-frequency knob), else the configured call_thresh
	thresholds := sweep.Values(combos, "call_thresh")
	if len(thresholds) == 0 {
		thresholds = sweep.Values(combos, "kmer_thresh")
	}
	if len(thresholds) == 0 {
		thresholds = []float64{cfg.Algorithm.CallThresh}
	}
	for i := range thresholds {
		thresholds[i] *= 100 // evaluator works in percent units
	}

	// each curve's stats load once; the sweep reuses the loaded data
	var curves []roc.Curve
	for _, decl := range cfg.ROCPlot.Curves {
		observed, err := eval.ReadObserved(decl.StatFile)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		ev, err := eval.New(reg.Name, mapper, expected, observed)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		curves = append(curves, roc.BuildCurve(decl.Name, ev, cfg.CallThreshPercent(), thresholds))
	}

	out := fileio.EasyCreate(*pointsOut)
	roc.WritePoints(out, curves)
	err = out.Close()
	exception.PanicOnErr(err)

	for _, c := range curves {
		if gaps := c.Gaps(); len(gaps) > 0 {
			log.Printf("curve %s: undefined rates at thresholds %v", c.Name, gaps)
		}
		if auc, ok := roc.AUC(c); ok {
			log.Printf("curve %s: AUC %.4f", c.Name, auc)
		}
	}

	if *preview {
		fmt.Print(roc.Preview(curves))
	}

	if *plotOut == "" {
		*plotOut = cfg.ROCPlot.OutFile
	}
	if *plotOut != "" {
		if err = roc.Plot(curves, *plotOut); err != nil {
			log.Fatalf("ERROR: rendering %s: %v", *plotOut, err)
		}
		log.Printf("wrote %s", *plotOut)
	}
}

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ohofmann/seqval/config"
	"github.com/ohofmann/seqval/pipeline"
	"github.com/vertgenlab/gonomics/exception"
)

func runUsage(runFlags *flag.FlagSet) {
	fmt.Print(
		"run - Run the full validation pipeline: demultiplex, then external\n" +
			"alignment, realignment, and variant calling per barcode and region\n\n" +
			"Usage:\n" +
			"  seqval run -c pipeline.yaml\n\n" +
			"Options:\n")
	runFlags.PrintDefaults()
}

func runRun(args []string) {
	var err error
	runFlags := flag.NewFlagSet("run", flag.ExitOnError)

	configFile := runFlags.String("c", "", "Pipeline configuration file.")

	err = runFlags.Parse(args)
	exception.PanicOnErr(err)
	runFlags.Usage = func() { runUsage(runFlags) }

	if *configFile == "" {
		runFlags.Usage()
		errExit("\nERROR: must have input for -c")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	results, err := pipeline.New(cfg).Run()
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	var failed int
	for _, res := range results {
		if len(results) > 1 {
			fmt.Printf("run %d\t%v\n", res.N, res.Combo)
		}
		fmt.Printf("total reads\t%d\n", res.Counts.Total)
		for _, name := range res.Counts.Names() {
			fmt.Printf("%s\t%d\n", name, res.Counts.Assigned[name])
		}
		fmt.Printf("unassigned\t%d\n", res.Counts.Unassigned)
		for _, f := range res.Failures {
			fmt.Printf("FAILED\t%s\n", f.Error())
		}
		failed += len(res.Failures)
	}
	if failed > 0 {
		errExit(fmt.Sprintf("\n%d barcode/region stage(s) failed", failed))
	}
}

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ohofmann/seqval/config"
	"github.com/ohofmann/seqval/demux"
	"github.com/vertgenlab/gonomics/exception"
)

func demuxUsage(demuxFlags *flag.FlagSet) {
	fmt.Print(
		"demux - Split raw FASTQ reads into per-barcode streams\n\n" +
			"Usage:\n" +
			"  seqval demux [options] -c pipeline.yaml\n\n" +
			"Options:\n")
	demuxFlags.PrintDefaults()
}

func runDemux(args []string) {
	var err error
	demuxFlags := flag.NewFlagSet("demux", flag.ExitOnError)

	configFile := demuxFlags.String("c", "", "Pipeline configuration file.")
	outDir := demuxFlags.String("o", "", "Output directory. Defaults to the config's work dir.")
	cores := demuxFlags.Int("cores", 0, "Worker count for barcode matching. Defaults to the config's cores.")

	err = demuxFlags.Parse(args)
	exception.PanicOnErr(err)
	demuxFlags.Usage = func() { demuxUsage(demuxFlags) }

	if *configFile == "" {
		demuxFlags.Usage()
		errExit("\nERROR: must have input for -c")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	set, err := cfg.BarcodeSet()
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if *outDir == "" {
		*outDir = cfg.Dir.Work
	}
	if *cores == 0 {
		*cores = cfg.Algorithm.Cores
	}

	files := make([]string, len(cfg.Input))
	for i, lane := range cfg.Input {
		files[i] = lane.File
	}

	counts, err := demux.Demux(files, set, demux.Options{
		QualThresh: uint8(cfg.Algorithm.QualThresh),
		Cores:      *cores,
		OutDir:     *outDir,
	})
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	fmt.Printf("total reads\t%d\n", counts.Total)
	fmt.Printf("malformed skipped\t%d\n", counts.Malformed)
	for _, name := range counts.Names() {
		fmt.Printf("%s\t%d\n", name, counts.Assigned[name])
	}
	fmt.Printf("unassigned\t%d\n", counts.Unassigned)
}

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

const version string = "0.1.0"

type subcommand struct {
	name     string
	function func(args []string)
	blurb    string
}

// SubCommands contains all valid subcommands.
// New subcommands can be added to seqval by adding a new entry to this array.
var SubCommands = []*subcommand{
	{"demux", runDemux, "split raw fastq into per-barcode streams"},
	{"eval", runEval, "compare observed variant calls against a truth table"},
	{"roc", runRoc, "sweep thresholds and build ROC curves"},
	{"run", runRun, "run the full pipeline including external stages"},
}

func usage() {
	s := new(strings.Builder)
	s.WriteString(
		"Program: seqval (validation of deep-sequencing variant calls)\n" +
			"Version: " + version + "\n" +
			"\nUsage:\tseqval <command> [options]\n\n" +
			"Commands:\n")

	// add subcommand text via tabwriter so the columns align
	w := tabwriter.NewWriter(s, 0, 8, 5, '\t', tabwriter.AlignRight)
	for i := range SubCommands {
		fmt.Fprintf(w, "\t%s\t%s\n", SubCommands[i].name, SubCommands[i].blurb)
	}
	w.Flush()
	fmt.Print(s.String())
}

// commandMap builds a map of possible subcommands keyed on the name of the subcommand
func commandMap() map[string]func(args []string) {
	m := make(map[string]func(args []string))
	for i := range SubCommands {
		m[SubCommands[i].name] = SubCommands[i].function
	}
	return m
}

func main() {
	flag.Usage = usage
	flag.Parse()

	command := commandMap()[flag.Arg(0)]

	// if no command is found, print the usage and return
	if command == nil {
		flag.Usage()
		return
	}

	command(flag.Args()[1:])
}

func errExit(err string) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

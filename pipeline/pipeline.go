// Package pipeline drives full validation runs: demultiplexing, then
// the external alignment and variant-calling stages per barcode, then
// evaluation inputs laid out for the ROC step. External programs are
// opaque collaborators; each stage runs to completion before the next
// stage reads its output. When the configuration declares a parameter
// sweep, every cross-product combination is one independent run with
// its own demultiplexed streams and stats files.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ohofmann/seqval/barcode"
	"github.com/ohofmann/seqval/config"
	"github.com/ohofmann/seqval/demux"
	"github.com/ohofmann/seqval/sweep"
)

// Runner executes the pipeline described by one configuration.
type Runner struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// StageError records a failed external step. A failure aborts the
// remaining stages for that barcode/region only; other barcodes still
// run to completion.
type StageError struct {
	Barcode string
	Region  string
	Stage   string
	Err     error
}

func (e StageError) Error() string {
	return fmt.Sprintf("%s/%s: stage %s: %v", e.Barcode, e.Region, e.Stage, e.Err)
}

// Result is the outcome of one parameter combination's run: run number
// (the <n> slot of the stats file pattern), the combination's values,
// the demux counts, and any per-barcode stage failures.
type Result struct {
	N        int
	Combo    sweep.Combo
	Counts   demux.Counts
	Failures []StageError
}

// Run executes one pipeline run per sweep combination, or a single run
// with the static algorithm values when no sweep is declared. Each run
// demultiplexes into its own work directory and pushes every call_bases
// barcode through the external align/convert/realign/call stages for
// every region. Stage failures are collected per run; only structural
// problems (missing programs, unwritable directories, unbuildable
// barcode sets) abort with a top-level error.
func (r *Runner) Run() ([]Result, error) {
	if err := r.mkdirs(); err != nil {
		return nil, err
	}
	set, err := r.cfg.BarcodeSet()
	if err != nil {
		return nil, err
	}

	combos := []sweep.Combo{nil}
	var order []string
	if params := r.cfg.SweepParams(); len(params) > 0 {
		combos, err = sweep.CrossProduct(params)
		if err != nil {
			return nil, err
		}
		for _, p := range params {
			order = append(order, p.Name)
		}
	}

	results := make([]Result, 0, len(combos))
	for i, combo := range combos {
		res, err := r.runCombo(i+1, combo, order, set)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// runCombo executes one full run at one parameterization. Swept combos
// get their own work subdirectory so their demultiplexed streams and
// alignments never clobber another combination's.
func (r *Runner) runCombo(n int, combo sweep.Combo, order []string, set *barcode.Set) (Result, error) {
	alg := applyCombo(r.cfg.Algorithm, combo)
	workDir := r.cfg.Dir.Work
	if len(combo) > 0 {
		workDir = filepath.Join(workDir, combo.ID(order))
	}

	files := make([]string, len(r.cfg.Input))
	for i, lane := range r.cfg.Input {
		files[i] = lane.File
	}
	counts, err := demux.Demux(files, set, demux.Options{
		QualThresh: uint8(alg.QualThresh),
		Cores:      alg.Cores,
		OutDir:     workDir,
	})
	if err != nil {
		return Result{}, err
	}
	log.Printf("run %d: demultiplexed %d reads across %d barcodes (%d unassigned, %d malformed)",
		n, counts.Total, len(counts.Assigned), counts.Unassigned, counts.Malformed)

	res := Result{N: n, Combo: combo, Counts: counts}
	for _, lane := range r.cfg.Input {
		for _, decl := range lane.Barcodes {
			bc, ok := set.Find(decl.Name)
			if !ok || !bc.HasRole(barcode.RoleCallBases) {
				continue
			}
			for _, reg := range r.cfg.Ref.Regions {
				if err := r.runBarcodeRegion(lane.Lane, bc.Name, reg.Name, workDir, alg, n); err != nil {
					se, ok := err.(StageError)
					if !ok {
						return res, err
					}
					log.Printf("WARNING: run %d: %v", n, se)
					res.Failures = append(res.Failures, se)
				}
			}
		}
	}
	return res, nil
}

// applyCombo overlays one sweep combination onto the static algorithm
// options. Parameters outside the recognized sweep axes are ignored;
// CrossProduct has already validated the declaration.
func applyCombo(alg config.Algorithm, combo sweep.Combo) config.Algorithm {
	if v, ok := combo["qual_thresh"]; ok {
		alg.QualThresh = int(v)
	}
	if v, ok := combo["kmer_thresh"]; ok {
		alg.KmerThresh = v
	}
	if v, ok := combo["call_thresh"]; ok {
		alg.CallThresh = v
	}
	if v, ok := combo["kmer_size"]; ok {
		alg.KmerSize = int(v)
	}
	return alg
}

// runBarcodeRegion runs the external stage chain for one barcode/region
// of one run. Each stage is a synchronization point; its full output
// must exist before the next stage starts, so the stages run strictly
// in order.
func (r *Runner) runBarcodeRegion(lane int, bcName, regName, workDir string, alg config.Algorithm, n int) error {
	fq := filepath.Join(workDir, bcName+".fastq.gz")
	aligned := filepath.Join(r.cfg.Dir.Align, fmt.Sprintf("%s_%s_%d.sam", bcName, regName, n))
	bam := filepath.Join(r.cfg.Dir.Align, fmt.Sprintf("%s_%s_%d.bam", bcName, regName, n))
	realigned := filepath.Join(r.cfg.Dir.Align, fmt.Sprintf("%s_%s_%d.realign.bam", bcName, regName, n))
	stats := r.cfg.StatsFile(lane, bcName, n, false)

	stages := []struct {
		name string
		args []string
	}{
		{"align", []string{"-f", fq, "-d", r.cfg.Ref.File, "-o", aligned}},
		{"to_bam", []string{"-i", aligned, "-o", bam}},
		{"realign", r.realignArgs(bam, realigned)},
		{"call", []string{"-i", realigned, "-k", fmt.Sprintf("%d", alg.KmerSize), "-o", stats}},
	}
	for _, stage := range stages {
		prog, ok := r.cfg.Program[stage.name]
		if !ok || prog == "" {
			return fmt.Errorf("program %s not configured", stage.name)
		}
		if err := run(prog, stage.args...); err != nil {
			return StageError{Barcode: bcName, Region: regName, Stage: stage.name, Err: err}
		}
	}
	return nil
}

func (r *Runner) realignArgs(in, out string) []string {
	args := []string{"-T", r.cfg.Algorithm.Realignment, "-i", in, "-o", out}
	if r.cfg.Algorithm.JavaMemory != "" {
		args = append([]string{"-Xmx" + r.cfg.Algorithm.JavaMemory}, args...)
	}
	return args
}

// run executes one external program and waits for it, folding its
// combined output into the error on failure.
func run(prog string, args ...string) error {
	cmd := exec.Command(prog, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %v: %s", prog, err, string(output))
	}
	return nil
}

func (r *Runner) mkdirs() error {
	for _, d := range []string{r.cfg.Dir.Work, r.cfg.Dir.Align, r.cfg.Dir.Variant,
		r.cfg.Dir.Stats, r.cfg.Dir.Calls, r.cfg.Dir.Plot} {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return nil
}

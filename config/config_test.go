package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ohofmann/seqval/barcode"
)

const testConfig = `input:
  - file: lane1.fastq.gz
    lane: 1
    barcodes:
      - name: bc1_outer
        sequence: ATCACGA
        roles: [call_bases]
      - name: bc2_outer
        sequence: CGATGTA
        roles: [control]
ref:
  file: hxb2.fasta
  regions:
    - name: gag
      expected: expected/gag.yaml
      offset: -39
    - name: rt
      expected: expected/rt.yaml
      offset:
        790-1167: -10
        1168-1176:
algorithm:
  barcode_mismatch: 1
  allowed_ns: 0
  realignment: gatk
  kmer_size: 13
  qual_thresh: 20
  kmer_thresh: 0.01
  call_thresh: 0.05
  cores: 4
  platform: illumina
  java_memory: 2g
roc_plot:
  region: rt
  curves:
    - name: Base
      stat_file: variation_stats/1_bc2_outer_7.yaml
    - name: Shrec
      stat_file: variation_stats/1_bc2_outer_7.variant.yaml
  sweep:
    - name: qual_thresh
      values: [0, 10, 20]
    - name: kmer_thresh
      values: [0.01, 0.05]
  out_file: plot/roc_bc2.pdf
program:
  align: novoalign
  to_bam: picard
  realign: gatk
  call: snp-caller
dir:
  work: tmp
  align: alignments
  variant: variants
  stats: variation_stats
  calls: calls
  plot: plot
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Input) != 1 || c.Input[0].File != "lane1.fastq.gz" {
		t.Error("input lanes misparsed:", c.Input)
	}
	if c.Algorithm.BarcodeMismatch != 1 || c.Algorithm.QualThresh != 20 || c.Algorithm.Cores != 4 {
		t.Error("algorithm options misparsed:", c.Algorithm)
	}
	if c.Algorithm.JavaMemory != "2g" || c.Algorithm.Platform != "illumina" {
		t.Error("string options misparsed:", c.Algorithm)
	}
	if len(c.ROCPlot.Curves) != 2 || c.ROCPlot.Curves[1].Name != "Shrec" {
		t.Error("curves misparsed:", c.ROCPlot.Curves)
	}
	if c.Dir.Stats != "variation_stats" || c.Program["align"] != "novoalign" {
		t.Error("dir/program misparsed")
	}
}

func TestBarcodeSet(t *testing.T) {
	c, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	set, err := c.BarcodeSet()
	if err != nil {
		t.Fatal(err)
	}
	bc, ok := set.Find("bc1_outer")
	if !ok || !bc.HasRole(barcode.RoleCallBases) {
		t.Error("bc1_outer missing or missing call_bases role")
	}
}

func TestMappers(t *testing.T) {
	c, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}

	gag, err := c.Region("gag")
	if err != nil {
		t.Fatal(err)
	}
	m, err := gag.Mapper()
	if err != nil {
		t.Fatal(err)
	}
	if pos, ok := m.ToExpected(100); !ok || pos != 61 {
		t.Error("scalar offset misapplied:", pos, ok)
	}

	rt, err := c.Region("rt")
	if err != nil {
		t.Fatal(err)
	}
	m, err = rt.Mapper()
	if err != nil {
		t.Fatal(err)
	}
	if pos, ok := m.ToExpected(1000); !ok || pos != 990 {
		t.Error("ranged offset misapplied:", pos, ok)
	}
	if _, ok := m.ToExpected(1170); ok {
		t.Error("empty offset value must mark the range excluded")
	}
}

func TestSweepParams(t *testing.T) {
	c, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	params := c.SweepParams()
	if len(params) != 2 || params[0].Name != "qual_thresh" || len(params[0].Values) != 3 {
		t.Error("sweep misparsed:", params)
	}
}

func TestStatsFile(t *testing.T) {
	c, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	got := c.StatsFile(1, "bc2_outer", 7, false)
	if got != filepath.Join("variation_stats", "1_bc2_outer_7.yaml") {
		t.Error("stats path wrong:", got)
	}
	got = c.StatsFile(1, "bc2_outer", 7, true)
	if got != filepath.Join("variation_stats", "1_bc2_outer_7.variant.yaml") {
		t.Error("variant stats path wrong:", got)
	}
}

func TestValidation(t *testing.T) {
	bad := func(find, replace string) string {
		return writeConfig(t, strings.Replace(testConfig, find, replace, 1))
	}

	if _, err := Load(bad("barcode_mismatch: 1", "barcode_mismatch: -1")); err == nil {
		t.Error("negative mismatch budget must be rejected")
	}
	if _, err := Load(bad("call_thresh: 0.05", "call_thresh: 5")); err == nil {
		t.Error("call_thresh outside 0-1 must be rejected")
	}
	if _, err := Load(bad("qual_thresh: 20", "qual_thresh: 300")); err == nil {
		t.Error("qual_thresh beyond the Phred range must be rejected")
	}
	if _, err := Load(bad("values: [0, 10, 20]", "values: [0, 10, 300]")); err == nil {
		t.Error("swept qual_thresh beyond the Phred range must be rejected")
	}
	if _, err := Load(bad("sequence: CGATGTA", "sequence: ATCACGT")); err == nil {
		t.Error("ambiguous barcode pair must be rejected at load")
	}
	if _, err := Load(bad("790-1167: -10", "500-1200: -10")); err == nil {
		t.Error("overlapping offset ranges must be rejected at load")
	}
}

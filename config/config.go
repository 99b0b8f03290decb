// Package config loads and validates the pipeline configuration file.
// The file is YAML with top-level keys input, ref, algorithm, roc_plot,
// program, and dir; structural problems are rejected here, before any
// read is processed.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/ohofmann/seqval/barcode"
	"github.com/ohofmann/seqval/region"
	"github.com/ohofmann/seqval/sweep"
	"github.com/spf13/viper"
)

// Lane is one input FASTQ file and the barcodes multiplexed within it.
type Lane struct {
	File     string        `mapstructure:"file"`
	Lane     int           `mapstructure:"lane"`
	Barcodes []BarcodeDecl `mapstructure:"barcodes"`
}

// BarcodeDecl declares one barcode with its capability roles.
type BarcodeDecl struct {
	Name     string   `mapstructure:"name"`
	Sequence string   `mapstructure:"sequence"`
	Roles    []string `mapstructure:"roles"`
}

// RegionDecl names a genomic region, its truth table, and its coordinate
// offset. Offset is either a scalar integer applied region-wide or a
// mapping of "start-end" range keys to integer offsets, where an empty
// value marks the range excluded from evaluation.
type RegionDecl struct {
	Name          string `mapstructure:"name"`
	Expected      string `mapstructure:"expected"`
	Offset        any    `mapstructure:"offset"`
	OffsetDefault *int   `mapstructure:"offset_default"`
}

// Reference describes the alignment reference and its regions.
type Reference struct {
	File    string       `mapstructure:"file"`
	Regions []RegionDecl `mapstructure:"regions"`
}

// Algorithm carries the recognized algorithm options.
type Algorithm struct {
	BarcodeMismatch int     `mapstructure:"barcode_mismatch"`
	AllowedNs       int     `mapstructure:"allowed_ns"`
	Realignment     string  `mapstructure:"realignment"`
	KmerSize        int     `mapstructure:"kmer_size"`
	QualThresh      int     `mapstructure:"qual_thresh"`
	KmerThresh      float64 `mapstructure:"kmer_thresh"`
	CallThresh      float64 `mapstructure:"call_thresh"`
	Cores           int     `mapstructure:"cores"`
	Platform        string  `mapstructure:"platform"`
	JavaMemory      string  `mapstructure:"java_memory"`
}

// CurveDecl names one ROC curve and the observed stats file backing it.
type CurveDecl struct {
	Name     string `mapstructure:"name"`
	StatFile string `mapstructure:"stat_file"`
}

// SweepDecl is one swept parameter with its ordered candidate values.
type SweepDecl struct {
	Name   string    `mapstructure:"name"`
	Values []float64 `mapstructure:"values"`
}

// ROCPlot declares the curves, the threshold sweep, and the chart output.
type ROCPlot struct {
	Region  string      `mapstructure:"region"`
	Curves  []CurveDecl `mapstructure:"curves"`
	Sweep   []SweepDecl `mapstructure:"sweep"`
	OutFile string      `mapstructure:"out_file"`
}

// Dirs is the working directory layout. Purely locational.
type Dirs struct {
	Work    string `mapstructure:"work"`
	Align   string `mapstructure:"align"`
	Variant string `mapstructure:"variant"`
	Stats   string `mapstructure:"stats"`
	Calls   string `mapstructure:"calls"`
	Plot    string `mapstructure:"plot"`
}

// Config is the full pipeline configuration.
type Config struct {
	Input     []Lane            `mapstructure:"input"`
	Ref       Reference         `mapstructure:"ref"`
	Algorithm Algorithm         `mapstructure:"algorithm"`
	ROCPlot   ROCPlot           `mapstructure:"roc_plot"`
	Program   map[string]string `mapstructure:"program"`
	Dir       Dirs              `mapstructure:"dir"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if c.Algorithm.Cores == 0 {
		c.Algorithm.Cores = 1
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.Input) == 0 {
		return fmt.Errorf("config: no input lanes declared")
	}
	for _, lane := range c.Input {
		if lane.File == "" {
			return fmt.Errorf("config: lane %d has no input file", lane.Lane)
		}
	}
	a := c.Algorithm
	if a.BarcodeMismatch < 0 {
		return fmt.Errorf("config: barcode_mismatch must be >= 0")
	}
	if a.AllowedNs < 0 {
		return fmt.Errorf("config: allowed_ns must be >= 0")
	}
	if a.QualThresh < 0 || a.QualThresh > 93 {
		return fmt.Errorf("config: qual_thresh must be a Phred score in 0-93")
	}
	if a.Cores < 1 {
		return fmt.Errorf("config: cores must be >= 1")
	}
	if a.CallThresh < 0 || a.CallThresh > 1 {
		return fmt.Errorf("config: call_thresh must be a 0-1 fraction")
	}
	if a.KmerThresh < 0 || a.KmerThresh > 1 {
		return fmt.Errorf("config: kmer_thresh must be a 0-1 fraction")
	}
	if _, err := c.BarcodeSet(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, r := range c.Ref.Regions {
		if r.Name == "" {
			return fmt.Errorf("config: region with empty name")
		}
		if r.Expected == "" {
			return fmt.Errorf("config: region %s has no expected file", r.Name)
		}
		if _, err := r.Mapper(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	for _, cv := range c.ROCPlot.Curves {
		if cv.Name == "" || cv.StatFile == "" {
			return fmt.Errorf("config: roc_plot curve needs name and stat_file")
		}
	}
	for _, s := range c.ROCPlot.Sweep {
		if s.Name != "qual_thresh" {
			continue
		}
		for _, v := range s.Values {
			if v < 0 || v > 93 {
				return fmt.Errorf("config: swept qual_thresh %g must be a Phred score in 0-93", v)
			}
		}
	}
	return nil
}

// BarcodeSet builds the validated barcode set from every lane's
// declarations, applying the algorithm's mismatch and N policies.
func (c *Config) BarcodeSet() (*barcode.Set, error) {
	var bcs []barcode.Barcode
	for _, lane := range c.Input {
		for _, d := range lane.Barcodes {
			roles := make([]barcode.Role, len(d.Roles))
			for i, r := range d.Roles {
				switch barcode.Role(r) {
				case barcode.RoleCallBases, barcode.RoleControl, barcode.RolePlain:
					roles[i] = barcode.Role(r)
				default:
					return nil, fmt.Errorf("barcode %s: unknown role %q", d.Name, r)
				}
			}
			bc, err := barcode.New(d.Name, d.Sequence, roles...)
			if err != nil {
				return nil, err
			}
			bcs = append(bcs, bc)
		}
	}
	return barcode.NewSet(bcs, c.Algorithm.BarcodeMismatch, c.Algorithm.AllowedNs)
}

// Region looks up a region declaration by name.
func (c *Config) Region(name string) (RegionDecl, error) {
	for _, r := range c.Ref.Regions {
		if r.Name == name {
			return r, nil
		}
	}
	return RegionDecl{}, fmt.Errorf("config: no region named %s", name)
}

// Mapper builds the offset mapper for this region from its tagged
// scalar-or-ranged declaration.
func (r RegionDecl) Mapper() (*region.Mapper, error) {
	var m *region.Mapper
	switch v := r.Offset.(type) {
	case nil:
		m = region.NewScalar(r.Name, 0)
	case int:
		m = region.NewScalar(r.Name, v)
	case int64:
		m = region.NewScalar(r.Name, int(v))
	case float64:
		m = region.NewScalar(r.Name, int(v))
	case map[string]any:
		spans := make([]region.Span, 0, len(v))
		for key, val := range v {
			start, end, err := region.ParseSpan(key)
			if err != nil {
				return nil, fmt.Errorf("region %s: %w", r.Name, err)
			}
			span := region.Span{Start: start, End: end}
			switch o := val.(type) {
			case nil:
				span.Excluded = true
			case int:
				span.Offset = o
			case int64:
				span.Offset = int(o)
			case float64:
				span.Offset = int(o)
			default:
				return nil, fmt.Errorf("region %s: offset range %s: bad value %v", r.Name, key, val)
			}
			spans = append(spans, span)
		}
		var err error
		m, err = region.NewRanged(r.Name, spans)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("region %s: offset must be an integer or a range mapping", r.Name)
	}
	if r.OffsetDefault != nil {
		m.SetDefault(*r.OffsetDefault)
	}
	return m, nil
}

// SweepParams converts the declared sweep into explicit parameters.
func (c *Config) SweepParams() []sweep.Param {
	params := make([]sweep.Param, len(c.ROCPlot.Sweep))
	for i, s := range c.ROCPlot.Sweep {
		params[i] = sweep.Param{Name: s.Name, Values: s.Values}
	}
	return params
}

// CallThreshPercent returns call_thresh converted from a 0-1 fraction to
// the percent units used by the evaluator.
func (c *Config) CallThreshPercent() float64 {
	return c.Algorithm.CallThresh * 100
}

// StatsFile returns the observed-stats path for one barcode and run:
// variation_stats/<lane>_<barcode>_<n>[.variant].yaml
func (c *Config) StatsFile(lane int, bcName string, n int, variant bool) string {
	suffix := ""
	if variant {
		suffix = ".variant"
	}
	return filepath.Join(c.Dir.Stats, fmt.Sprintf("%d_%s_%d%s.yaml", lane, bcName, n, suffix))
}

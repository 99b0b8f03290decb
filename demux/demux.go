// Package demux partitions raw FASTQ reads into per-barcode streams,
// stripping the matched barcode and quality-trimming the 3' end.
package demux

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ohofmann/seqval/barcode"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fastq"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// chunkSize reads are matched in parallel, then written in input order.
const chunkSize int = 1024

// Assignment is the terminal record produced for each read: the barcode
// it was routed to (or barcode.Unassigned) and the trimmed read that was
// written to that stream.
type Assignment struct {
	ReadName   string
	Barcode    string
	Mismatches int
	Read       fastq.Fastq
	malformed  bool
}

// Counts reports the outcome of a demultiplexing run.
type Counts struct {
	Total      int
	Malformed  int
	Unassigned int
	Assigned   map[string]int
}

// Names returns the assigned barcode names in sorted order, for stable
// reporting.
func (c Counts) Names() []string {
	names := maps.Keys(c.Assigned)
	slices.Sort(names)
	return names
}

// Options controls trimming and scheduling.
type Options struct {
	QualThresh uint8 // Phred threshold for 3' quality trimming, 0 disables
	TrimWindow int   // sliding window size, defaults to 5
	Cores      int   // matcher parallelism hint, defaults to 1
	OutDir     string
}

// Demux streams every input FASTQ through the barcode matcher and writes
// one gzipped FASTQ per barcode plus an unassigned stream into OutDir.
// Read order within each stream equals input order. A read whose sequence
// and quality lengths disagree is skipped and counted; an unreadable
// input file is fatal for the whole run.
func Demux(files []string, set *barcode.Set, opts Options) (Counts, error) {
	if len(files) == 0 {
		return Counts{}, fmt.Errorf("no input fastq files")
	}
	if opts.TrimWindow < 1 {
		opts.TrimWindow = 5
	}
	if opts.Cores < 1 {
		opts.Cores = 1
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return Counts{}, fmt.Errorf("creating %s: %w", opts.OutDir, err)
	}

	counts := Counts{Assigned: make(map[string]int)}
	writers := openWriters(set, opts.OutDir)

	chunk := make([]fastq.Fastq, 0, chunkSize)
	results := make([]Assignment, chunkSize)
	for _, file := range files {
		reads := fastq.GoReadToChan(file)
		for read := range reads {
			chunk = append(chunk, read)
			if len(chunk) == chunkSize {
				processChunk(chunk, results, set, opts, writers, &counts)
				chunk = chunk[:0]
			}
		}
		processChunk(chunk, results, set, opts, writers, &counts)
		chunk = chunk[:0]
	}

	var err error
	for _, w := range writers {
		err = w.Close()
		exception.PanicOnErr(err)
	}
	return counts, nil
}

// processChunk assigns a chunk of reads across worker goroutines, then
// writes results sequentially so each stream keeps input order.
func processChunk(chunk []fastq.Fastq, results []Assignment, set *barcode.Set, opts Options, writers map[string]*fileio.EasyWriter, counts *Counts) {
	if len(chunk) == 0 {
		return
	}
	idx := make(chan int, len(chunk))
	for i := range chunk {
		idx <- i
	}
	close(idx)

	wg := new(sync.WaitGroup)
	for w := 0; w < opts.Cores; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				results[i] = assign(chunk[i], set, opts)
			}
		}()
	}
	wg.Wait()

	for i := range chunk {
		a := results[i]
		counts.Total++
		if a.malformed {
			counts.Malformed++
			continue
		}
		if a.Barcode == barcode.Unassigned {
			counts.Unassigned++
		} else {
			counts.Assigned[a.Barcode]++
		}
		fastq.WriteToFileHandle(writers[a.Barcode], a.Read)
	}
}

// assign matches, strips the barcode, and quality-trims one read.
// Pure over its inputs; safe to call from multiple goroutines.
func assign(read fastq.Fastq, set *barcode.Set, opts Options) Assignment {
	if len(read.Seq) != len(read.Qual) {
		return Assignment{ReadName: read.Name, malformed: true}
	}
	name, mismatches := set.Match(read.Seq)
	out := fastq.Fastq{Name: read.Name, Seq: read.Seq, Qual: read.Qual}
	if name != barcode.Unassigned {
		bc, _ := set.Find(name)
		out.Seq = out.Seq[len(bc.Seq):]
		out.Qual = out.Qual[len(bc.Seq):]
	}
	if opts.QualThresh > 0 {
		qualityTrim(&out, opts.QualThresh, opts.TrimWindow)
	}
	return Assignment{ReadName: read.Name, Barcode: name, Mismatches: mismatches, Read: out}
}

func openWriters(set *barcode.Set, outDir string) map[string]*fileio.EasyWriter {
	writers := make(map[string]*fileio.EasyWriter)
	for _, bc := range set.Barcodes() {
		writers[bc.Name] = fileio.EasyCreate(filepath.Join(outDir, bc.Name+".fastq.gz"))
	}
	writers[barcode.Unassigned] = fileio.EasyCreate(filepath.Join(outDir, "unassigned.fastq.gz"))
	return writers
}

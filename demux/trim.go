package demux

import "github.com/vertgenlab/gonomics/fastq"

// qualityTrim cuts the 3' tail of a read starting at the first position
// where the mean quality of the window beginning there drops below
// thresh. Bases past that point are never re-included, even if a later
// window would pass again. Windows truncated by the end of the read
// average over the bases that remain.
func qualityTrim(fq *fastq.Fastq, thresh uint8, window int) {
	cut := trimPoint(fq.Qual, thresh, window)
	fq.Seq = fq.Seq[:cut]
	fq.Qual = fq.Qual[:cut]
}

func trimPoint(qual []uint8, thresh uint8, window int) int {
	for i := range qual {
		end := i + window
		if end > len(qual) {
			end = len(qual)
		}
		var sum int
		for j := i; j < end; j++ {
			sum += int(qual[j])
		}
		if sum < int(thresh)*(end-i) {
			return i
		}
	}
	return len(qual)
}

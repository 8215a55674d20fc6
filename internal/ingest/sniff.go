// Package ingest reads raw CORDIS exports: delimiter sniffing, charset
// tolerance, and structural repair of rows with embedded delimiters.
package ingest

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// sniffSampleSize bounds how much of a file the sniffer inspects.
const sniffSampleSize = 2048

// candidate delimiters, in preference order for ties.
var candidateDelims = []rune{';', ',', '\t'}

// ErrNoDelimiter is returned when no candidate delimiter explains the sample.
var ErrNoDelimiter = eris.New("ingest: no consistent delimiter in sample")

// SniffDelimiter inspects a bounded prefix of the file and returns the
// delimiter among ';' ',' and tab that yields the most consistent field
// count across sample lines. Callers should fall back to a configured
// default on ErrNoDelimiter.
func SniffDelimiter(path string) (rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	buf := make([]byte, sniffSampleSize)
	n, err := f.Read(buf)
	if n == 0 {
		if err != nil {
			return 0, eris.Wrapf(err, "ingest: read sample from %s", path)
		}
		return 0, eris.Wrap(ErrNoDelimiter, path)
	}

	lines := sampleLines(string(buf[:n]))
	if len(lines) == 0 {
		return 0, eris.Wrap(ErrNoDelimiter, path)
	}

	best := rune(0)
	bestScore := 0.0
	for _, d := range candidateDelims {
		score := delimScore(lines, d)
		if score > bestScore {
			bestScore = score
			best = d
		}
	}
	if best == 0 {
		return 0, eris.Wrap(ErrNoDelimiter, path)
	}
	return best, nil
}

// sampleLines splits the sample into complete lines, discarding a trailing
// partial line that was cut by the sample boundary.
func sampleLines(sample string) []string {
	lines := strings.Split(sample, "\n")
	if len(lines) > 1 && !strings.HasSuffix(sample, "\n") {
		lines = lines[:len(lines)-1]
	}
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// delimScore rates how well a delimiter explains the sample: the fraction of
// lines sharing the modal field count. A delimiter that never splits scores 0.
func delimScore(lines []string, d rune) float64 {
	counts := make(map[int]int)
	for _, l := range lines {
		counts[strings.Count(l, string(d))+1]++
	}
	modal, modalN := 0, 0
	for fields, n := range counts {
		if n > modalN {
			modal, modalN = fields, n
		}
	}
	if modal < 2 {
		return 0
	}
	return float64(modalN) / float64(len(lines))
}

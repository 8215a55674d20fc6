package ingest

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/horizon-insight/cordis-etl/internal/table"
)

// BadRow records a data row that could not be repaired to the header width.
type BadRow struct {
	Line int    // 1-based line number in the source file
	Raw  string // original row text
}

// Options configures a robust read.
type Options struct {
	// Delimiter is the field separator (from SniffDelimiter or config).
	Delimiter rune
	// RepairColumn names the header column most likely to contain embedded
	// delimiters (matched case-insensitively). Long rows are repaired by
	// merging at this column; when empty or unknown, long rows are reported
	// as bad instead.
	RepairColumn string
	// Charset optionally names a source encoding for files that are not
	// UTF-8. Unset means UTF-8 with invalid sequences stripped.
	Charset string
}

// ReadFile reads a header plus data rows from a delimited text file,
// repairing rows whose naive split does not match the header width.
//
// Rows with too many fields are repaired by re-joining the offending column
// with the delimiter until the width matches (lossy when more than one field
// embedded delimiters). Rows with too few fields are right-padded with empty
// fields; both repairs are counted and logged, never fatal. Rows that still
// mismatch are returned as BadRows and excluded from the table.
func ReadFile(path string, opts Options) (*table.Table, []BadRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()
	return readRows(f, path, opts)
}

func readRows(r io.Reader, name string, opts Options) (*table.Table, []BadRow, error) {
	log := zap.L().With(zap.String("component", "ingest"), zap.String("file", name))

	decoded, err := decodeReader(r, opts.Charset)
	if err != nil {
		return nil, nil, err
	}

	sc := bufio.NewScanner(decoded)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	delim := string(opts.Delimiter)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, nil, eris.Wrapf(err, "ingest: read header of %s", name)
		}
		return nil, nil, eris.Errorf("ingest: %s: empty file, no header", name)
	}
	header := splitFields(sc.Text(), delim)
	if len(header) < 2 {
		return nil, nil, eris.Errorf("ingest: %s: header has %d fields, not a delimited file", name, len(header))
	}

	// header cells may carry padding or quoting the value cleaners have not
	// seen yet, so the match strips both
	repairAt := -1
	for i, h := range header {
		bare := strings.Trim(strings.TrimSpace(h), `"`)
		if opts.RepairColumn != "" && strings.EqualFold(bare, opts.RepairColumn) {
			repairAt = i
			break
		}
	}

	tbl := table.New(header)
	var bad []BadRow
	var merged, padded int

	line := 1
	for sc.Scan() {
		line++
		raw := sc.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}

		fields := splitFields(raw, delim)
		switch {
		case len(fields) == len(header):
			// already well-formed, pass through untouched
		case len(fields) > len(header) && repairAt >= 0:
			fields = mergeAt(fields, len(header), repairAt, delim)
			if len(fields) != len(header) {
				bad = append(bad, BadRow{Line: line, Raw: raw})
				continue
			}
			merged++
		case len(fields) < len(header):
			for len(fields) < len(header) {
				fields = append(fields, "")
			}
			padded++
		default:
			bad = append(bad, BadRow{Line: line, Raw: raw})
			continue
		}
		tbl.Rows = append(tbl.Rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, eris.Wrapf(err, "ingest: read %s", name)
	}

	if merged+padded+len(bad) > 0 {
		log.Info("structural repair summary",
			zap.Int("rows", tbl.Len()),
			zap.Int("merged", merged),
			zap.Int("padded", padded),
			zap.Int("dropped", len(bad)),
		)
	}

	return tbl, bad, nil
}

// mergeAt repairs an over-long row by concatenating field k with its right
// neighbour, re-inserting the delimiter, until the row reaches want fields
// or no merge is possible.
func mergeAt(fields []string, want, k int, delim string) []string {
	for len(fields) > want && k+1 < len(fields) {
		fields[k] = fields[k] + delim + fields[k+1]
		fields = append(fields[:k+1], fields[k+2:]...)
	}
	return fields
}

// splitFields performs the naive delimiter split the repair policy operates
// on. Field text is preserved byte for byte apart from a trailing \r and
// invalid UTF-8 sequences, so re-joining a repaired row with the delimiter
// reconstructs the original text. Whitespace and quote handling is value
// cleaning and lives in the entity cleaners.
func splitFields(line, delim string) []string {
	parts := strings.Split(strings.TrimRight(line, "\r"), delim)
	for i, p := range parts {
		parts[i] = strings.ToValidUTF8(p, "")
	}
	return parts
}

// decodeReader wraps r with a charset decoder when a non-UTF-8 encoding is
// declared for the source file.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}

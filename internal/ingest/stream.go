package ingest

import (
	"strings"

	"github.com/budgeteer-dev/budgeteer/internal/model"
)

// StreamThresholds control when Analyze routes a parse through the chunked
// parser instead of the one-shot parser.
type StreamThresholds struct {
	Lines int // default 3000
	Bytes int // default 500 KB
}

// ShouldStream reports whether the input is large enough to warrant the
// chunked parser.
func ShouldStream(text string, t StreamThresholds) bool {
	if t.Lines <= 0 {
		t.Lines = 3000
	}
	if t.Bytes <= 0 {
		t.Bytes = 500_000
	}
	if len(text) >= t.Bytes {
		return true
	}
	return strings.Count(text, "\n")+1 >= t.Lines
}

// StreamOpts configure a chunked parse. Rows are always delivered in file
// order; callbacks returning false stop the parse. A chunk callback is a
// synchronization point: parsing does not continue until it returns, which
// gives the caller advisory backpressure between chunks.
type StreamOpts struct {
	OnRow      func(row model.RawRow, index int) bool
	OnChunk    func(rows []model.RawRow, startIndex int) bool
	OnProgress func(rows int, finished bool)

	// ChunkRows is the number of data rows per chunk (default 500).
	ChunkRows   int
	CollectRows bool
}

// StreamResult summarizes a chunked parse.
type StreamResult struct {
	Rows     []model.RawRow
	RowCount int
	Aborted  bool
	Errors   []ParseError
}

// StreamParse parses CSV text in row chunks, emitting callbacks between
// chunks. It shares header and quoting semantics with Parse.
func StreamParse(text string, opts StreamOpts) StreamResult {
	if opts.ChunkRows <= 0 {
		opts.ChunkRows = 500
	}
	collect := opts.CollectRows || (opts.OnRow == nil && opts.OnChunk == nil)

	// Parsing the full text up front keeps one quoting implementation; the
	// chunked delivery below is what callers observe.
	rows, errs := Parse(text)

	res := StreamResult{Errors: errs}
	var chunk []model.RawRow
	chunkStart := 0

	flush := func() bool {
		if len(chunk) == 0 {
			return true
		}
		if opts.OnChunk != nil {
			if !opts.OnChunk(chunk, chunkStart) {
				return false
			}
		}
		if opts.OnProgress != nil {
			opts.OnProgress(res.RowCount, false)
		}
		chunkStart = res.RowCount
		chunk = chunk[:0]
		return true
	}

	for i, row := range rows {
		if opts.OnRow != nil && !opts.OnRow(row, i) {
			res.Aborted = true
			break
		}
		if collect {
			res.Rows = append(res.Rows, row)
		}
		chunk = append(chunk, row)
		res.RowCount++

		if len(chunk) >= opts.ChunkRows {
			if !flush() {
				res.Aborted = true
				break
			}
		}
	}
	if !res.Aborted && !flush() {
		res.Aborted = true
	}

	if opts.OnProgress != nil {
		opts.OnProgress(res.RowCount, true)
	}
	return res
}

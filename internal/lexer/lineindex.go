package lexer

import "sort"

// LineIndex provides efficient byte offset to line/column conversion.
// It pre-computes line start positions for O(log n) lookups and is used
// to attach positions to parse diagnostics.
type LineIndex struct {
	source     string
	lineStarts []int // byte offset of each line start
}

// NewLineIndex creates a LineIndex for the given source.
func NewLineIndex(source string) *LineIndex {
	idx := &LineIndex{
		source:     source,
		lineStarts: []int{0}, // First line starts at offset 0
	}

	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			nextLineStart := i + 1
			if nextLineStart < len(source) {
				idx.lineStarts = append(idx.lineStarts, nextLineStart)
			}
		}
	}

	return idx
}

// LineCount returns the number of lines in the source.
func (idx *LineIndex) LineCount() int {
	return len(idx.lineStarts)
}

// ByteOffsetToLineColumn converts a byte offset to 0-indexed line and column.
func (idx *LineIndex) ByteOffsetToLineColumn(offset int) (line, col int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(idx.source) {
		offset = len(idx.source)
	}

	// Binary search for the line containing this offset
	line = sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	}) - 1

	if line < 0 {
		line = 0
	}

	return line, offset - idx.lineStarts[line]
}

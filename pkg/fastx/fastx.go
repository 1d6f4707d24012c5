// Package fastx reads query sequences from FASTA and FASTQ files. Only
// the fields the aligner needs are kept: the record id and the sequence.
package fastx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/seqwork/grafalign/pkg/errors"
)

// Record is one FASTA/FASTQ entry.
type Record struct {
	ID  string
	Seq string
}

// Parse reads FASTA or FASTQ records from r, auto-detected from the first
// record marker ('>' or '@'). Sequences are upper-cased; multi-line FASTA
// sequences are concatenated.
func Parse(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(1)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read query file: %w", err)
	}
	switch first[0] {
	case '>':
		return parseFasta(br)
	case '@':
		return parseFastq(br)
	}
	return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidRead, "query file is neither FASTA nor FASTQ (starts with %q)", first[0])
}

// ParseFile parses the query file at path.
func ParseFile(path string) ([]Record, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer fh.Close()
	return Parse(fh)
}

func parseFasta(br *bufio.Reader) ([]Record, error) {
	var recs []Record
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	var id string
	var seq strings.Builder
	flush := func() {
		if id != "" {
			recs = append(recs, Record{ID: id, Seq: strings.ToUpper(seq.String())})
		}
		seq.Reset()
	}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			id = strings.Fields(line[1:])[0]
			continue
		}
		seq.WriteString(line)
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan fasta: %w", err)
	}
	return recs, nil
}

func parseFastq(br *bufio.Reader) ([]Record, error) {
	var recs []Record
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		head := strings.TrimSpace(sc.Text())
		if head == "" {
			continue
		}
		if head[0] != '@' {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidRead, "malformed fastq record header %q", head)
		}
		if !sc.Scan() {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidRead, "truncated fastq record %q", head)
		}
		seq := strings.ToUpper(strings.TrimSpace(sc.Text()))
		// Separator and quality lines are read and dropped.
		if !sc.Scan() || !sc.Scan() {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidRead, "truncated fastq record %q", head)
		}
		recs = append(recs, Record{ID: strings.Fields(head[1:])[0], Seq: seq})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan fastq: %w", err)
	}
	return recs, nil
}

// Package gfa reads and writes the subset of GFA used by the aligner:
// S (segment) and L (link) records. It also provides the forward-strand
// canonicalization pass and the conversion of a canonical GFA file into a
// sequence graph.
package gfa

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/seqwork/grafalign/pkg/errors"
)

// Segment is one S record.
type Segment struct {
	Name string
	Seq  string
}

// Link is one L record. Strands are "+" or "-".
type Link struct {
	From       string
	FromStrand string
	To         string
	ToStrand   string
}

// File is a parsed GFA file. Segment order is preserved from the input.
type File struct {
	Segments []Segment
	Links    []Link

	index map[string]int // segment name -> position in Segments
}

// Segment returns the named segment, if present.
func (f *File) Segment(name string) (Segment, bool) {
	i, ok := f.index[name]
	if !ok {
		return Segment{}, false
	}
	return f.Segments[i], true
}

// Parse reads S and L records from r. Unknown record types are skipped.
// Sequences are upper-cased; links referring to unknown segments are
// rejected.
func Parse(r io.Reader) (*File, error) {
	f := &File{index: make(map[string]int)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "S":
			if len(fields) < 3 {
				return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: S record needs name and sequence", lineno)
			}
			name, seq := fields[1], strings.ToUpper(fields[2])
			if _, dup := f.index[name]; dup {
				return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: duplicate segment %s", lineno, name)
			}
			for i := 0; i < len(seq); i++ {
				switch seq[i] {
				case 'A', 'C', 'G', 'T':
				default:
					return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: segment %s has non-ACGT character %q", lineno, name, seq[i])
				}
			}
			f.index[name] = len(f.Segments)
			f.Segments = append(f.Segments, Segment{Name: name, Seq: seq})
		case "L":
			if len(fields) < 5 {
				return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: L record needs from/strand/to/strand", lineno)
			}
			l := Link{From: fields[1], FromStrand: fields[2], To: fields[3], ToStrand: fields[4]}
			if l.FromStrand != "+" && l.FromStrand != "-" {
				return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: bad strand %q", lineno, l.FromStrand)
			}
			if l.ToStrand != "+" && l.ToStrand != "-" {
				return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: bad strand %q", lineno, l.ToStrand)
			}
			if _, ok := f.index[l.From]; !ok {
				return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: link from unknown segment %s", lineno, l.From)
			}
			if _, ok := f.index[l.To]; !ok {
				return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidGraph, "line %d: link to unknown segment %s", lineno, l.To)
			}
			f.Links = append(f.Links, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan gfa: %w", err)
	}
	return f, nil
}

// ParseFile parses the GFA file at path.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer fh.Close()
	return Parse(fh)
}

// Write emits f with integer-renumbered segment names (1-based, in segment
// order) and all links on the forward strand. It is the output format of
// the convert command; Canonicalize must have run first.
func (f *File) Write(w io.Writer) error {
	id := make(map[string]int, len(f.Segments))
	for i, s := range f.Segments {
		id[s.Name] = i + 1
		if _, err := fmt.Fprintf(w, "S\t%d\t%s\n", i+1, s.Seq); err != nil {
			return err
		}
	}
	for _, l := range f.Links {
		if _, err := fmt.Fprintf(w, "L\t%d\t+\t%d\t+\t*\n", id[l.From], id[l.To]); err != nil {
			return err
		}
	}
	return nil
}

package gfa

import (
	pkgerrors "github.com/seqwork/grafalign/pkg/errors"
)

// ReverseComplement returns the reverse complement of a nucleotide
// sequence under the standard A-T, C-G pairing.
func ReverseComplement(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	for i := range b {
		switch b[i] {
		case 'A':
			b[i] = 'T'
		case 'T':
			b[i] = 'A'
		case 'C':
			b[i] = 'G'
		case 'G':
			b[i] = 'C'
		}
	}
	return string(b)
}

// flip reverses a link: endpoints swap and both strands invert.
func flip(l *Link) {
	l.From, l.To = l.To, l.From
	l.FromStrand, l.ToStrand = invert(l.ToStrand), invert(l.FromStrand)
}

func invert(strand string) string {
	if strand == "+" {
		return "-"
	}
	return "+"
}

// Canonicalize rewrites f so every segment sits on the forward strand.
//
// Links are processed in order under a running strand assignment: the first
// time a segment appears its strand is registered; later links that
// disagree with the registration are flipped, which registers (or
// re-derives) the strand of their other endpoint. Segments whose
// registered strand is "-" have their sequence reverse-complemented. A link
// whose two endpoints are both registered but agree on only one end cannot
// be reconciled by flipping and aborts with ErrCodeStrandConflict.
func Canonicalize(f *File) error {
	registered := make(map[string]string, len(f.Segments))

	for i := range f.Links {
		l := &f.Links[i]
		fromReg, fromSeen := registered[l.From]
		toReg, toSeen := registered[l.To]

		switch {
		case !fromSeen && !toSeen:
			registered[l.From] = l.FromStrand
			registered[l.To] = l.ToStrand

		case fromSeen && !toSeen:
			if l.FromStrand != fromReg {
				flip(l)
				// After the flip the unregistered segment is the new From.
				registered[l.From] = l.FromStrand
			} else {
				registered[l.To] = l.ToStrand
			}

		case !fromSeen && toSeen:
			if l.ToStrand != toReg {
				flip(l)
				registered[l.To] = l.ToStrand
			} else {
				registered[l.From] = l.FromStrand
			}

		default:
			fromOK := l.FromStrand == fromReg
			toOK := l.ToStrand == toReg
			switch {
			case fromOK && toOK:
				// Already consistent.
			case !fromOK && !toOK:
				flip(l)
			default:
				return pkgerrors.New(pkgerrors.ErrCodeStrandConflict,
					"link %s%s -> %s%s contradicts registered strands %s/%s",
					l.From, l.FromStrand, l.To, l.ToStrand, fromReg, toReg)
			}
		}
	}

	for i := range f.Segments {
		if registered[f.Segments[i].Name] == "-" {
			f.Segments[i].Seq = ReverseComplement(f.Segments[i].Seq)
		}
	}
	return nil
}

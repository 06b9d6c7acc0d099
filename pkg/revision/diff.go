package revision

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/freelawproject/wiki/pkg/content"
)

// Op is the kind of a diff hunk.
type Op string

const (
	OpEqual   Op = "equal"
	OpReplace Op = "replace"
	OpDelete  Op = "delete"
	OpInsert  Op = "insert"
)

// Hunk is one contiguous run of the line diff. ALines and BLines hold the
// affected lines from each side; an insert has no ALines and a delete no
// BLines.
type Hunk struct {
	Op     Op
	ALines []string
	BLines []string
}

// Diff is a structured line diff between two revisions of one entity.
//
// The engine never assumes A precedes B: the labels carry each side's
// sequence number and diffing r7 against r3 is as valid as the reverse.
// Applying the diff to A's content always rebuilds B's content exactly.
type Diff struct {
	Entity content.TargetRef
	ALabel string
	BLabel string
	Hunks  []Hunk

	aLines []string
	bLines []string
}

// Compute builds the line diff from revision a to revision b.
func Compute(a, b *content.Revision) (*Diff, error) {
	if a.Entity != b.Entity {
		return nil, &content.StoreError{
			Code:    content.ErrInvalidArgument,
			Message: "cannot diff revisions of different entities",
		}
	}

	aLines := splitLines(a.Content)
	bLines := splitLines(b.Content)
	matcher := difflib.NewMatcher(aLines, bLines)

	d := &Diff{
		Entity: a.Entity,
		ALabel: fmt.Sprintf("r%d", a.Seq),
		BLabel: fmt.Sprintf("r%d", b.Seq),
		aLines: aLines,
		bLines: bLines,
	}
	for _, op := range matcher.GetOpCodes() {
		hunk := Hunk{
			ALines: aLines[op.I1:op.I2],
			BLines: bLines[op.J1:op.J2],
		}
		switch op.Tag {
		case 'e':
			hunk.Op = OpEqual
		case 'r':
			hunk.Op = OpReplace
		case 'd':
			hunk.Op = OpDelete
		case 'i':
			hunk.Op = OpInsert
		default:
			return nil, &content.StoreError{
				Code:    content.ErrIO,
				Message: fmt.Sprintf("unexpected opcode %q from matcher", op.Tag),
			}
		}
		d.Hunks = append(d.Hunks, hunk)
	}
	return d, nil
}

// Apply patches aContent, which must equal the A side this diff was
// computed from, and returns the B side's content.
func (d *Diff) Apply(aContent string) (string, error) {
	if strings.Join(d.aLines, "") != aContent {
		return "", &content.StoreError{
			Code:    content.ErrInvalidArgument,
			Message: "content does not match the diff's source revision",
		}
	}

	var out strings.Builder
	for _, hunk := range d.Hunks {
		switch hunk.Op {
		case OpEqual, OpDelete:
			if hunk.Op == OpEqual {
				for _, line := range hunk.ALines {
					out.WriteString(line)
				}
			}
		case OpReplace, OpInsert:
			for _, line := range hunk.BLines {
				out.WriteString(line)
			}
		}
	}
	return out.String(), nil
}

// Unified renders the diff in unified format with the revision labels as
// file names.
func (d *Diff) Unified() (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        d.aLines,
		B:        d.bLines,
		FromFile: d.ALabel,
		ToFile:   d.BLabel,
		Context:  3,
	})
}

// splitLines splits content into lines keeping terminators, so joining
// the pieces reproduces the input byte for byte.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

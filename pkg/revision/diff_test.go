package revision_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/revision"
)

func rev(entity content.TargetRef, seq uint64, body string) *content.Revision {
	return &content.Revision{Entity: entity, Seq: seq, Content: body}
}

func TestDiffRoundTrip(t *testing.T) {
	entity := content.PageRef(uuid.New())
	a := rev(entity, 1, "alpha\nbravo\ncharlie\n")
	b := rev(entity, 2, "alpha\nBRAVO\ncharlie\ndelta\n")

	d, err := revision.Compute(a, b)
	require.NoError(t, err)
	require.Equal(t, "r1", d.ALabel)
	require.Equal(t, "r2", d.BLabel)

	patched, err := d.Apply(a.Content)
	require.NoError(t, err)
	require.Equal(t, b.Content, patched)
}

// The engine is order-independent: diffing newest-to-oldest is as valid
// as oldest-to-newest, with the labels flipped accordingly.
func TestDiffOrderIndependent(t *testing.T) {
	entity := content.PageRef(uuid.New())
	older := rev(entity, 3, "one\ntwo\n")
	newer := rev(entity, 7, "one\nthree\n")

	forward, err := revision.Compute(older, newer)
	require.NoError(t, err)
	backward, err := revision.Compute(newer, older)
	require.NoError(t, err)

	require.Equal(t, "r3", forward.ALabel)
	require.Equal(t, "r7", forward.BLabel)
	require.Equal(t, "r7", backward.ALabel)
	require.Equal(t, "r3", backward.BLabel)

	patched, err := backward.Apply(newer.Content)
	require.NoError(t, err)
	require.Equal(t, older.Content, patched)
}

func TestDiffNoTrailingNewline(t *testing.T) {
	entity := content.PageRef(uuid.New())
	a := rev(entity, 1, "no newline at end")
	b := rev(entity, 2, "no newline at end\nbut now there is\n")

	d, err := revision.Compute(a, b)
	require.NoError(t, err)
	patched, err := d.Apply(a.Content)
	require.NoError(t, err)
	require.Equal(t, b.Content, patched)
}

func TestDiffEmptySides(t *testing.T) {
	entity := content.PageRef(uuid.New())

	d, err := revision.Compute(rev(entity, 1, ""), rev(entity, 2, "born\n"))
	require.NoError(t, err)
	patched, err := d.Apply("")
	require.NoError(t, err)
	require.Equal(t, "born\n", patched)

	d, err = revision.Compute(rev(entity, 2, "gone\n"), rev(entity, 3, ""))
	require.NoError(t, err)
	patched, err = d.Apply("gone\n")
	require.NoError(t, err)
	require.Equal(t, "", patched)
}

func TestDiffHunks(t *testing.T) {
	entity := content.PageRef(uuid.New())
	a := rev(entity, 1, "keep\ndrop\n")
	b := rev(entity, 2, "keep\nadded\n")

	d, err := revision.Compute(a, b)
	require.NoError(t, err)

	require.Len(t, d.Hunks, 2)
	require.Equal(t, revision.OpEqual, d.Hunks[0].Op)
	require.Equal(t, []string{"keep\n"}, d.Hunks[0].ALines)
	require.Equal(t, revision.OpReplace, d.Hunks[1].Op)
	require.Equal(t, []string{"drop\n"}, d.Hunks[1].ALines)
	require.Equal(t, []string{"added\n"}, d.Hunks[1].BLines)
}

func TestDiffRejectsMismatch(t *testing.T) {
	pageA := content.PageRef(uuid.New())
	pageB := content.PageRef(uuid.New())

	_, err := revision.Compute(rev(pageA, 1, ""), rev(pageB, 2, ""))
	require.Error(t, err)

	d, err := revision.Compute(rev(pageA, 1, "real\n"), rev(pageA, 2, "other\n"))
	require.NoError(t, err)
	_, err = d.Apply("tampered\n")
	require.Error(t, err)
}

func TestUnifiedOutput(t *testing.T) {
	entity := content.PageRef(uuid.New())
	d, err := revision.Compute(rev(entity, 1, "old line\n"), rev(entity, 2, "new line\n"))
	require.NoError(t, err)

	text, err := d.Unified()
	require.NoError(t, err)
	require.Contains(t, text, "--- r1")
	require.Contains(t, text, "+++ r2")
	require.Contains(t, text, "-old line")
	require.Contains(t, text, "+new line")
}

package dataset

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/frame"
	"github.com/stretchr/testify/require"
)

func sampleFrame() *frame.Frame {
	return &frame.Frame{
		Columns: []frame.Column{
			{
				Name:   "a",
				Label:  "lab1",
				Format: "BEST",
				Type:   format.ColumnNumeric,
				Width:  8,
				Floats: []float64{1.0, math.NaN(), 2.5},
			},
			{
				Name:    "s",
				Type:    format.ColumnCharacter,
				Width:   2,
				Strings: []string{"x", "", "yy"},
			},
		},
	}
}

func writeSample(t *testing.T, f *frame.Frame, opts ...WriterOption) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.sas7bdat")
	require.NoError(t, WriteFrame(path, f, opts...))

	return path
}

func requireSameValues(t *testing.T, want, got *frame.Frame) {
	t.Helper()
	require.Equal(t, want.NumCols(), got.NumCols())
	require.Equal(t, want.NumRows(), got.NumRows())

	for i := range want.Columns {
		wc, gc := &want.Columns[i], &got.Columns[i]
		require.Equal(t, wc.Name, gc.Name)
		require.Equal(t, wc.Type, gc.Type)

		if wc.Type == format.ColumnNumeric {
			require.Equal(t, len(wc.Floats), len(gc.Floats))
			for r := range wc.Floats {
				if math.IsNaN(wc.Floats[r]) {
					require.True(t, math.IsNaN(gc.Floats[r]), "%s row %d", wc.Name, r)
				} else {
					require.Equal(t, wc.Floats[r], gc.Floats[r], "%s row %d", wc.Name, r)
				}
			}
		} else {
			require.Equal(t, wc.Strings, gc.Strings)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	in := sampleFrame()
	path := writeSample(t, in)

	out, err := Read(path)
	require.NoError(t, err)

	requireSameValues(t, in, out)

	require.Equal(t, "lab1", out.Columns[0].Label)
	require.Equal(t, "BEST", out.Columns[0].Format)
	require.Equal(t, 8, out.Columns[0].Width)
	require.Equal(t, 2, out.Columns[1].Width)
	require.Equal(t, 0, out.Columns[0].Offset)
	require.Equal(t, 8, out.Columns[1].Offset)

	require.Equal(t, []bool{false, false, false}, out.Deleted)
	require.Equal(t, []bool{true, true, true}, out.Valid)

	info := out.Info
	require.Equal(t, "SAS FILE", info.SASFile)
	require.Equal(t, "TEST", info.DataSet)
	require.Equal(t, "DATA", info.FileType)
	require.Equal(t, "DATASTEP", info.Proc)
	require.Equal(t, "", info.Compression)
	require.Equal(t, "UTF-8", info.Encoding)
	require.Equal(t, "9.0401M7", info.SASRelease)
	require.Equal(t, uint64(3), info.RowCount)
	require.Equal(t, uint64(10), info.RowLength)
	require.Equal(t, uint64(0), info.DeletedRows)
	require.Equal(t, uint32(65536), info.HeaderSize)
	require.Equal(t, uint32(65536), info.PageSize)
	require.Empty(t, out.Warnings)
}

func TestRoundTripIrisShape(t *testing.T) {
	in := &frame.Frame{
		Columns: []frame.Column{
			{Name: "Sepal_Length", Type: format.ColumnNumeric, Width: 8,
				Floats: []float64{5.1, 4.9, 5.9}},
			{Name: "Sepal_Width", Type: format.ColumnNumeric, Width: 8,
				Floats: []float64{3.5, 3.0, 3.0}},
			{Name: "Petal_Length", Type: format.ColumnNumeric, Width: 8,
				Floats: []float64{1.4, 1.4, 5.1}},
			{Name: "Petal_Width", Type: format.ColumnNumeric, Width: 8,
				Floats: []float64{0.2, 0.2, 1.8}},
			{Name: "Species", Type: format.ColumnCharacter, Width: 10,
				Strings: []string{"setosa", "setosa", "virginica"}},
		},
	}

	out, err := Read(writeSample(t, in, WithDataSetName("IRIS")))
	require.NoError(t, err)

	require.Equal(t,
		[]string{"Sepal_Length", "Sepal_Width", "Petal_Length", "Petal_Width", "Species"},
		out.Names())
	require.Equal(t, uint64(3), out.Info.RowCount)
	require.Equal(t, uint64(42), out.Info.RowLength)

	// first and last rows survive intact
	require.Equal(t, 5.1, out.Columns[0].Floats[0])
	require.Equal(t, "setosa", out.Columns[4].Strings[0])
	require.Equal(t, 1.8, out.Columns[3].Floats[2])
	require.Equal(t, "virginica", out.Columns[4].Strings[2])
}

func TestRoundTripBit32(t *testing.T) {
	in := sampleFrame()
	path := writeSample(t, in, WithBit32())

	out, err := Read(path)
	require.NoError(t, err)

	requireSameValues(t, in, out)
	require.Equal(t, uint32(1024), out.Info.HeaderSize)
	require.Equal(t, uint32(8192), out.Info.PageSize)
}

func TestEndianSymmetry(t *testing.T) {
	in := sampleFrame()

	le, err := Read(writeSample(t, in))
	require.NoError(t, err)

	be, err := Read(writeSample(t, in, WithBigEndian()))
	require.NoError(t, err)

	requireSameValues(t, le, be)
	require.Equal(t, le.Fingerprint(), be.Fingerprint())

	be32, err := Read(writeSample(t, in, WithBigEndian(), WithBit32()))
	require.NoError(t, err)
	requireSameValues(t, le, be32)
}

func TestRoundTripMultiPage(t *testing.T) {
	const n = 10000

	in := &frame.Frame{
		Columns: []frame.Column{
			{Name: "idx", Type: format.ColumnNumeric, Width: 8, Floats: make([]float64, n)},
			{Name: "tag", Type: format.ColumnCharacter, Width: 4, Strings: make([]string, n)},
		},
	}
	tags := []string{"aa", "bbb", "cccc", ""}
	for i := 0; i < n; i++ {
		in.Columns[0].Floats[i] = float64(i) / 4
		in.Columns[1].Strings[i] = tags[i%len(tags)]
	}

	out, err := Read(writeSample(t, in))
	require.NoError(t, err)

	requireSameValues(t, in, out)
	require.Equal(t, uint64(n), out.Info.RowCount)
	for _, v := range out.Valid {
		require.True(t, v)
	}
}

func TestRowRangeIsProjection(t *testing.T) {
	const n = 100

	in := &frame.Frame{
		Columns: []frame.Column{
			{Name: "v", Type: format.ColumnNumeric, Width: 8, Floats: make([]float64, n)},
		},
	}
	for i := 0; i < n; i++ {
		in.Columns[0].Floats[i] = float64(i)
	}
	path := writeSample(t, in)

	full, err := Read(path)
	require.NoError(t, err)

	part, err := Read(path, WithRowRange(11, 20))
	require.NoError(t, err)

	require.Equal(t, 10, part.NumRows())
	require.Equal(t, full.Columns[0].Floats[10:20], part.Columns[0].Floats)
	require.Equal(t, full.Deleted[10:20], part.Deleted)

	// ranges past the end clamp to the dataset
	tail, err := Read(path, WithRowRange(91, 500))
	require.NoError(t, err)
	require.Equal(t, 10, tail.NumRows())
	require.Equal(t, full.Columns[0].Floats[90:], tail.Columns[0].Floats)
}

func TestColumnSelectionIsProjection(t *testing.T) {
	in := sampleFrame()
	path := writeSample(t, in)

	full, err := Read(path)
	require.NoError(t, err)

	sel, err := Read(path, WithColumns("s"))
	require.NoError(t, err)

	require.Equal(t, 1, sel.NumCols())
	require.Equal(t, "s", sel.Columns[0].Name)
	require.Equal(t, full.Column("s").Strings, sel.Columns[0].Strings)
	require.Equal(t, []string{"a", "s"}, sel.Info.VarNames)

	// unknown names are ignored
	none, err := Read(path, WithColumns("missing"))
	require.NoError(t, err)
	require.Equal(t, 0, none.NumCols())
	require.Equal(t, 3, len(none.Deleted))
}

func TestRoundTripFingerprint(t *testing.T) {
	in := sampleFrame()
	in.Deleted = make([]bool, 3)
	path := writeSample(t, in)

	first, err := Read(path)
	require.NoError(t, err)

	second, err := Read(path)
	require.NoError(t, err)

	require.Equal(t, first.Fingerprint(), second.Fingerprint())
	require.Equal(t, in.Fingerprint(), first.Fingerprint())
}

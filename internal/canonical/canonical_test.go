package canonical_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certforge/internal/canonical"
)

func mustRecord(t *testing.T, raw string) canonical.Record {
	t.Helper()
	r, err := canonical.FromJSON([]byte(raw))
	require.NoError(t, err)
	return r
}

func TestGet_DottedAndIndexedPaths(t *testing.T) {
	r := mustRecord(t, `{"client":{"name":"Acme"},"boards":[{"circuits":[{"rating":32}]}],"a.b":"literal"}`)

	v, ok := r.Get("client.name")
	assert.True(t, ok)
	assert.Equal(t, "Acme", v)

	v, ok = r.Get("boards.0.circuits.0.rating")
	assert.True(t, ok)
	assert.Equal(t, float64(32), v)

	v, ok = r.Get("a.b")
	assert.True(t, ok)
	assert.Equal(t, "literal", v)

	_, ok = r.Get("boards.5.circuits")
	assert.False(t, ok)
	_, ok = r.Get("client.name.first")
	assert.False(t, ok)
}

func TestString_FirstNonEmptyCandidateWins(t *testing.T) {
	r := mustRecord(t, `{"clientName":"  ","client":{"name":null},"customerName":"Jane","other":"ignored"}`)
	assert.Equal(t, "Jane", r.String("Not specified", "clientName", "client.name", "customerName", "other"))
	assert.Equal(t, "Not specified", r.String("Not specified", "missing", "client"))
}

func TestString_Coercions(t *testing.T) {
	r := mustRecord(t, `{"n":2.50,"b":true,"l":["a","",3],"u":"undefined","o":{"x":1}}`)
	assert.Equal(t, "2.5", r.String("", "n"))
	assert.Equal(t, "Yes", r.String("", "b"))
	assert.Equal(t, "a, 3", r.String("", "l"))
	assert.Equal(t, "def", r.String("def", "u"))
	assert.Equal(t, "def", r.String("def", "o"))
}

func TestNumber(t *testing.T) {
	r := mustRecord(t, `{"a":"32A","b":">200","c":"abc","d":12,"e":".5"}`)
	assert.InDelta(t, 32, r.Number(0, "a"), 1e-9)
	assert.InDelta(t, 200, r.Number(0, "b"), 1e-9)
	assert.InDelta(t, 12, r.Number(0, "c", "d"), 1e-9)
	assert.InDelta(t, 0.5, r.Number(0, "e"), 1e-9)
	assert.InDelta(t, 7, r.Number(7, "c"), 1e-9)
	assert.Equal(t, 12, r.Int(1, "c", "d"))
	assert.Equal(t, 1, r.Int(1, "c"))
}

func TestBool(t *testing.T) {
	r := mustRecord(t, `{"a":"yes","b":"maybe","c":false,"d":"✓"}`)
	assert.True(t, r.Bool(false, "a"))
	assert.False(t, r.Bool(true, "c"))
	assert.True(t, r.Bool(false, "b", "d"))
	assert.True(t, r.Bool(true, "b"))
}

func TestAppendUnit_NeverDoubleSuffixes(t *testing.T) {
	cases := []struct {
		in, unit, want string
	}{
		{"2.5", canonical.UnitSquareMM, "2.5mm²"},
		{"2.5mm²", canonical.UnitSquareMM, "2.5mm²"},
		{"2.5mm2", canonical.UnitSquareMM, "2.5mm2"},
		{"2.5 sq mm", canonical.UnitSquareMM, "2.5 sq mm"},
		{"32", canonical.UnitAmps, "32A"},
		{"32A", canonical.UnitAmps, "32A"},
		{"32 amps", canonical.UnitAmps, "32 amps"},
		{"0.35", canonical.UnitOhms, "0.35Ω"},
		{"0.35Ω", canonical.UnitOhms, "0.35Ω"},
		{">200", canonical.UnitMegOhms, ">200MΩ"},
		{">200MΩ", canonical.UnitMegOhms, ">200MΩ"},
		{"N/A", canonical.UnitAmps, "N/A"},
		{"LIM", canonical.UnitOhms, "LIM"},
		{"", canonical.UnitAmps, ""},
	}
	for _, tc := range cases {
		t.Run(tc.in+tc.unit, func(t *testing.T) {
			got := canonical.AppendUnit(tc.in, tc.unit)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, canonical.AppendUnit(got, tc.unit), "second application must be a no-op")
		})
	}
}

func TestWithUnit(t *testing.T) {
	r := mustRecord(t, `{"cableSize":"2.5mm²","liveSize":4}`)
	assert.Equal(t, "2.5mm²", r.WithUnit(canonical.UnitSquareMM, "N/A", "cableSize"))
	assert.Equal(t, "4mm²", r.WithUnit(canonical.UnitSquareMM, "N/A", "liveSize"))
	assert.Equal(t, "N/A", r.WithUnit(canonical.UnitSquareMM, "N/A", "cpcSize"))
}

func TestList_FirstNonEmptyListWins(t *testing.T) {
	r := mustRecord(t, `{"circuits":[],"scheduleOfTests":"x","circuitDetails":[{"a":1},{"a":2}],"testResults":[{"a":3}]}`)
	items, from := r.List("circuits", "scheduleOfTests", "circuitDetails", "testResults")
	assert.Len(t, items, 2)
	assert.Equal(t, "circuitDetails", from)
}

func TestList_IndexedObject(t *testing.T) {
	r := mustRecord(t, `{"rows":{"1":{"n":"b"},"0":{"n":"a"},"10":{"n":"c"}}}`)
	items, _ := r.List("rows")
	require.Len(t, items, 3)
	assert.Equal(t, "a", canonical.AsRecord(items[0]).String("", "n"))
	assert.Equal(t, "b", canonical.AsRecord(items[1]).String("", "n"))
	assert.Equal(t, "c", canonical.AsRecord(items[2]).String("", "n"))
}

func TestResolversAreTotalOnNilAndGarbage(t *testing.T) {
	var nilRec canonical.Record
	assert.Equal(t, "d", nilRec.String("d", "a"))
	assert.InDelta(t, 1, nilRec.Number(1, "a"), 0)
	items, _ := nilRec.List("a")
	assert.Empty(t, items)
	assert.NotNil(t, nilRec.Sub("a"))

	garbage := canonical.Record{"a": json.Number("nope"), "b": []int{1}, "c": struct{}{}}
	assert.Equal(t, "nope", garbage.String("d", "a"))
	assert.InDelta(t, 5, garbage.Number(5, "a", "b", "c"), 0)
	assert.Equal(t, "d", garbage.String("d", "b", "c"))
}

func TestAsRecord(t *testing.T) {
	assert.Equal(t, "Socket", canonical.AsRecord("Socket").String("", "description"))
	assert.Empty(t, canonical.AsRecord(nil))
}

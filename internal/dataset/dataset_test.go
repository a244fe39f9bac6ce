package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runCSV = `internalCurrentDate,Agent,money,health,currentDay
01/01/2024,PeasantFamily_1,100,90,1
02/01/2024,PeasantFamily_1,200,85,2
03/01/2024,PeasantFamily_1,300,80,3
`

func column(ds *Dataset, col string) []string {
	out := make([]string, 0, ds.Len())
	for _, r := range ds.Records {
		out = append(out, r.Value(col))
	}
	return out
}

func TestParse_NormalizesDates(t *testing.T) {
	ds, err := Parse(runCSV, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"internalCurrentDate", "Agent", "money", "health", "currentDay"}, ds.Columns)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, column(ds, "internalCurrentDate"))
	assert.Equal(t, []string{"100", "200", "300"}, column(ds, "money"))
}

func TestParse_UnparseableDatePassesThrough(t *testing.T) {
	text := "internalCurrentDate,money\n31/02/2024,1\nyesterday,2\n,3\n2024-05-06,4\n"
	ds, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"31/02/2024", "yesterday", "", "2024-05-06"}, column(ds, "internalCurrentDate"))
}

func TestParse_Empty(t *testing.T) {
	ds, err := Parse("", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, ds.Columns)

	ds, err = Parse("Agent,money\n", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, []string{"Agent", "money"}, ds.Columns)
}

func TestParse_ShortRowsPadded(t *testing.T) {
	ds, err := Parse("a,b,c\n1,2\n4,5,6\n", DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"1", "2", ""}, ds.Records[0].Values())
	v, ok := ds.Records[0].Get("c")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParse_LongRowRejected(t *testing.T) {
	_, err := Parse("a,b\n1,2\n1,2,3\n", DefaultOptions())
	require.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_MalformedInput(t *testing.T) {
	_, err := Parse("a,b\n\"unterminated,2\n", DefaultOptions())
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = Parse("a,b\n1,x\"y\n", DefaultOptions())
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestParse_QuotedFields(t *testing.T) {
	text := "Agent,note\n\"Family, North\",\"said \"\"hi\"\"\"\n"
	ds, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Family, North", ds.Records[0].Value("Agent"))
	assert.Equal(t, `said "hi"`, ds.Records[0].Value("note"))
}

func TestParse_StripsBOM(t *testing.T) {
	ds, err := Parse("\ufeffAgent,money\nA,1\n", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, ds.HasColumn("Agent"))
}

func TestParse_CustomOptions(t *testing.T) {
	text := "day,who,v\n2024/03/09,x,1\n"
	ds, err := Parse(text, Options{DateColumn: "day", DateLayout: "2006/01/02", AgentColumn: "who"})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-09", ds.Records[0].Value("day"))
	assert.Equal(t, []string{"x"}, ds.Agents())
}

func TestWrite_RoundTrip(t *testing.T) {
	text := "Agent,money,note,health\n" +
		"A,100,\"plain\",1\n" +
		"B,,\"with, comma\",2\n" +
		"A,3.5,\"line\nbreak\",\n" +
		"C,-1,\"quote \"\"q\"\"\",4\n"

	ds, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ds))

	back, err := Parse(buf.String(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ds.Columns, back.Columns)
	require.Equal(t, ds.Len(), back.Len())
	for i := range ds.Records {
		assert.Equal(t, ds.Records[i].Values(), back.Records[i].Values(), "row %d", i)
	}
}

func TestWrite_RoundTripSingleEmptyCell(t *testing.T) {
	ds, err := Parse("name\nalpha\n\"\"\nbeta\n", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	out, err := Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, "name\nalpha\n\"\"\nbeta\n", string(out))

	back, err := Parse(string(out), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, back.Len())
	assert.Equal(t, "", back.Records[1].Value("name"))
	assert.Equal(t, "beta", back.Records[2].Value("name"))
}

func TestWrite_DateRoundTripsNormalized(t *testing.T) {
	ds, err := Parse(runCSV, DefaultOptions())
	require.NoError(t, err)

	out, err := Marshal(ds)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "internalCurrentDate,Agent,money,health,currentDay\n2024-01-01,"))

	back, err := Parse(string(out), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, column(ds, "internalCurrentDate"), column(back, "internalCurrentDate"))
}

func TestDataset_Catalogue(t *testing.T) {
	text := "internalCurrentDate,Agent,money,label,water\n" +
		"01/01/2024,A,1,x,\n" +
		"02/01/2024,B,2,y,n/a\n" +
		"03/01/2024,A,3,z,7\n"
	ds, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, ds.Agents())
	assert.Equal(t, []string{"money", "water"}, ds.NumericColumns())

	first, last := ds.DateRange()
	assert.Equal(t, "2024-01-01", first)
	assert.Equal(t, "2024-01-03", last)
}

func TestDataset_NoAgentColumn(t *testing.T) {
	ds, err := Parse("money\n1\n", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, ds.Agents())
	assert.Equal(t, "", ds.Records[0].Value("Agent"))
}

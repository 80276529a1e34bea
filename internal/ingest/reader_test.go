package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytcatalog-backend/internal/apperrors"
)

func TestReadCSV(t *testing.T) {
	input := "id,channel_name,youtuber_name\n" +
		"1,Hola Mundo,Fernando\n" +
		"\n" +
		"2,\"MoureDev, by Brais\",Brais\n"

	rows, warnings, err := ReadCSV(strings.NewReader(input), "youtubers.csv")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Hola Mundo", rows[0].Values["channel_name"])
	assert.Equal(t, "MoureDev, by Brais", rows[1].Values["channel_name"])
	assert.Equal(t, 4, rows[1].Line)
}

func TestReadCSV_StripsBOM(t *testing.T) {
	input := "\xef\xbb\xbfid,name\n7,Go\n"

	rows, _, err := ReadCSV(strings.NewReader(input), "categories.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "7", rows[0].Values["id"], "first header must not carry the BOM")
}

func TestReadCSV_MalformedRowsBecomeWarnings(t *testing.T) {
	input := "id,name,description\n" +
		"1,Go,Language\n" +
		"2,too,many,fields\n" +
		"3,bad \"quote,x\n" +
		"4,Rust,Language\n"

	rows, warnings, err := ReadCSV(strings.NewReader(input), "categories.csv")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].Values["id"])
	assert.Equal(t, "4", rows[1].Values["id"])

	require.Len(t, warnings, 2)
	assert.Equal(t, "categories.csv", warnings[0].File)
	assert.Equal(t, 3, warnings[0].Line)
	assert.Equal(t, 4, warnings[1].Line)
}

func TestReadCSV_Empty(t *testing.T) {
	rows, warnings, err := ReadCSV(strings.NewReader(""), "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, warnings)
}

func TestParseFile_MissingFile(t *testing.T) {
	_, _, err := ParseFile(context.Background(), DirSource{Root: t.TempDir()}, "videos.csv")
	require.Error(t, err)

	var pe *apperrors.ParseError
	require.True(t, errors.As(err, &pe), "expected ParseError, got %T", err)
	assert.Equal(t, "videos.csv", pe.Path)
}

func TestMapping_Translate(t *testing.T) {
	m := DefaultStages()[0]
	row := Row{Line: 2, Values: map[string]string{
		"id":           "1",
		"channel_name": "Hola Mundo",
		"description":  "Canal de programació",
		"subscribers":  "100",
	}}

	fields := m.Translate(row)
	assert.Equal(t, "Hola Mundo", fields["nom_canal"])
	assert.Equal(t, "Canal de programació", fields["descripcio"])
	assert.NotContains(t, fields, "subscribers")
	assert.NotContains(t, fields, "channel_name")
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "t", "yes", "1", " y "} {
		v, ok := parseBool(s)
		assert.True(t, ok, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "f", "no", "0", "N"} {
		v, ok := parseBool(s)
		assert.True(t, ok, s)
		assert.False(t, v, s)
	}
	_, ok := parseBool("maybe")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2023-05-17")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 2023, d.Year())

	d, err = parseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = parseDate("17 of May")
	assert.Error(t, err)
}

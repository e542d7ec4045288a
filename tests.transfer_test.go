package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importNow = time.Date(2024, 3, 9, 14, 5, 6, 789000000, time.UTC)

// TestExportFileName ensures the stamp is file system safe.
func TestExportFileName(t *testing.T) {
	assert.Equal(t, "books-2024-03-09T14-05-06-789Z.json", ExportFileName(importNow))
	local := importNow.In(time.FixedZone("UTC+2", 2*3600))
	assert.Equal(t, "books-2024-03-09T14-05-06-789Z.json", ExportFileName(local))
}

// TestExportBooks ensures the content is an indented JSON array.
func TestExportBooks(t *testing.T) {
	file, err := ExportBooks(nil, importNow)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(file.Content))

	file, err = ExportBooks([]Book{{ID: "b:1", Title: "A", CreatedAt: 1}}, importNow)
	require.NoError(t, err)
	expected := "[\n  {\n    \"id\": \"b:1\",\n    \"title\": \"A\",\n    \"createdAt\": 1,\n    \"purchased\": false\n  }\n]"
	assert.Equal(t, expected, string(file.Content))
}

// TestExportImport_RoundTrip ensures a replace import of an export gives
// back the same list ordered newest first.
func TestExportImport_RoundTrip(t *testing.T) {
	books := []Book{
		{ID: "b:2", Title: "Older", Author: "X", CreatedAt: 100},
		{ID: "b:1", Title: "Newer", URL: "https://a.b", Note: "n", CreatedAt: 200, Purchased: true},
		{ID: "b:3", Title: "Same time", CreatedAt: 100},
	}
	file, err := ExportBooks(books, importNow)
	require.NoError(t, err)

	plan, err := PrepareImport(file.Content, NewMockUIDHandler("unused"), importNow)
	require.NoError(t, err)
	assert.Empty(t, plan.Rejected)

	got := plan.Apply([]Book{{ID: "b:9", Title: "Dropped"}}, ImportReplace)
	assert.Equal(t, []Book{books[1], books[0], books[2]}, got)
}

// TestParseImport ensures malformed files abort the whole import.
func TestParseImport(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
		count int
	}{
		{"invalid json", `[{"title":"A"}`, false, 0},
		{"object at top level", `{"title":"A"}`, false, 0},
		{"string at top level", `"books"`, false, 0},
		{"null at top level", `null`, false, 0},
		{"empty input", ``, false, 0},
		{"empty array", `[]`, true, 0},
		{"array of mixed values", `[{"title":"A"}, 1, "x"]`, true, 3},
		{"leading byte order mark", "\xEF\xBB\xBF[{\"title\":\"A\"}]", true, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raws, err := ParseImport([]byte(tc.input))
			if !tc.valid {
				assert.ErrorIs(t, err, ErrMalformedInput)
				return
			}
			require.NoError(t, err)
			assert.Len(t, raws, tc.count)
		})
	}
}

// TestSanitizeBooks ensures the coercion rules for each field.
func TestSanitizeBooks(t *testing.T) {
	input := `[
		{"id":"b:1","title":"  Dune  ","author":"Herbert","url":"https://x.y","note":"n","createdAt":10,"purchased":true},
		{"title":"No id","author":0,"url":false,"note":null,"purchased":"yes"},
		{"title":"   "},
		{"author":"no title"},
		42,
		{"id":7,"title":1984,"author":true,"createdAt":"2020-01-02T03:04:05Z"},
		{"title":"Nested","note":{"a":1},"createdAt":"1700000000000"}
	]`
	raws, err := ParseImport([]byte(input))
	require.NoError(t, err)

	books, rejected := SanitizeBooks(raws, NewMockUIDHandler("gen"), importNow)
	require.Len(t, books, 4)
	require.Len(t, rejected, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{rejected[0].Index, rejected[1].Index, rejected[2].Index})
	assert.Equal(t, "title is required", rejected[0].Reason)
	assert.Equal(t, "entry is not an object", rejected[2].Reason)

	assert.Equal(t, ImportedBook{
		Book:         Book{ID: "b:1", Title: "Dune", Author: "Herbert", URL: "https://x.y", Note: "n", CreatedAt: 10, Purchased: true},
		HasID:        true,
		HasCreatedAt: true,
		HasPurchased: true,
	}, books[0])

	assert.Equal(t, ImportedBook{
		Book: Book{ID: "b:gen", Title: "No id", CreatedAt: importNow.UnixMilli()},
	}, books[1])

	assert.Equal(t, "7", books[2].ID)
	assert.True(t, books[2].HasID)
	assert.Equal(t, "1984", books[2].Title)
	assert.Equal(t, "true", books[2].Author)
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli(), books[2].CreatedAt)

	assert.Equal(t, `{"a":1}`, books[3].Note)
	assert.Equal(t, int64(1700000000000), books[3].CreatedAt)
}

// TestSanitizeBooks_Idempotent ensures sanitizing a sanitized record gives it back.
func TestSanitizeBooks_Idempotent(t *testing.T) {
	raws, err := ParseImport([]byte(`[{"title":" A ","author":"B","url":"u","createdAt":"5"},{"title":"C","purchased":1}]`))
	require.NoError(t, err)
	first, rejected := SanitizeBooks(raws, &SeqUIDHandler{}, importNow)
	require.Empty(t, rejected)

	firstBooks := make([]Book, 0, len(first))
	for _, ib := range first {
		firstBooks = append(firstBooks, ib.Book)
	}
	data, err := json.Marshal(firstBooks)
	require.NoError(t, err)

	raws, err = ParseImport(data)
	require.NoError(t, err)
	second, rejected := SanitizeBooks(raws, &SeqUIDHandler{n: 100}, importNow.Add(time.Hour))
	require.Empty(t, rejected)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Book, second[i].Book)
	}
}

// TestMergeBooks_Precedence ensures incoming fields win on conflicts.
func TestMergeBooks_Precedence(t *testing.T) {
	existing := []Book{{ID: "1", Title: "A", Purchased: false}}
	plan, err := PrepareImport([]byte(`[{"id":"1","title":"A","purchased":true}]`), NewMockUIDHandler("x"), importNow)
	require.NoError(t, err)

	got := plan.Apply(existing, ImportMerge)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "A", got[0].Title)
	assert.True(t, got[0].Purchased)
}

// TestMergeBooks_KeyFallback ensures records without id merge on title and author.
func TestMergeBooks_KeyFallback(t *testing.T) {
	t.Run("two incoming records without id", func(t *testing.T) {
		plan, err := PrepareImport([]byte(`[{"title":"X","author":"Y","note":"first"},{"title":"X","author":"Y","purchased":true}]`), &SeqUIDHandler{}, importNow)
		require.NoError(t, err)
		got := plan.Apply(nil, ImportMerge)
		require.Len(t, got, 1)
		assert.Equal(t, "b:1", got[0].ID)
		assert.Equal(t, "first", got[0].Note)
		assert.True(t, got[0].Purchased)
	})

	t.Run("incoming record without id never overrides existing id", func(t *testing.T) {
		existing := []Book{{Title: "X", Author: "Y", Note: "local", CreatedAt: 1}}
		plan, err := PrepareImport([]byte(`[{"title":"X","author":"Y","url":"https://x"}]`), &SeqUIDHandler{}, importNow)
		require.NoError(t, err)
		got := plan.Apply(existing, ImportMerge)
		require.Len(t, got, 1)
		assert.Equal(t, "", got[0].ID)
		assert.Equal(t, "local", got[0].Note)
		assert.Equal(t, "https://x", got[0].URL)
		assert.Equal(t, int64(1), got[0].CreatedAt)
	})
}

// TestMergeBooks ensures the seeding, the overlay and the final ordering.
func TestMergeBooks(t *testing.T) {
	existing := []Book{
		{ID: "b:1", Title: "Kept", Note: "local note", CreatedAt: 30},
		{ID: "b:2", Title: "Updated", Author: "Old", CreatedAt: 10},
		{ID: "b:1", Title: "Duplicate loses", CreatedAt: 99},
	}
	input := `[
		{"id":"b:2","title":"Updated","author":"New"},
		{"id":"b:3","title":"Brand new","createdAt":20},
		{"id":"b:1","title":"Kept"}
	]`
	plan, err := PrepareImport([]byte(input), NewMockUIDHandler("x"), importNow)
	require.NoError(t, err)
	summary := plan.Summary(len(existing))
	assert.Equal(t, ImportSummary{Existing: 3, Incoming: 3}, summary)

	got := plan.Apply(existing, ImportMerge)
	require.Len(t, got, 3)
	assert.Equal(t, []Book{
		{ID: "b:1", Title: "Kept", Note: "local note", CreatedAt: 30},
		{ID: "b:3", Title: "Brand new", CreatedAt: 20},
		{ID: "b:2", Title: "Updated", Author: "New", CreatedAt: 10},
	}, got)
}

// TestReplaceBooks ensures duplicated ids collapse into one record.
func TestReplaceBooks(t *testing.T) {
	plan, err := PrepareImport([]byte(`[{"id":"a","title":"One","createdAt":1},{"id":"a","title":"Two","note":"n"},{"id":"b","title":"Three","createdAt":2}]`), NewMockUIDHandler("x"), importNow)
	require.NoError(t, err)
	got := plan.Apply([]Book{{ID: "z", Title: "Gone"}}, ImportReplace)
	assert.Equal(t, []Book{
		{ID: "b", Title: "Three", CreatedAt: 2},
		{ID: "a", Title: "Two", Note: "n", CreatedAt: 1},
	}, got)
}

// TestParseImportMode ensures only replace and merge are accepted.
func TestParseImportMode(t *testing.T) {
	mode, err := ParseImportMode(" Merge ")
	require.NoError(t, err)
	assert.Equal(t, ImportMerge, mode)
	mode, err = ParseImportMode("replace")
	require.NoError(t, err)
	assert.Equal(t, ImportReplace, mode)
	_, err = ParseImportMode("")
	assert.ErrorIs(t, err, ErrValidation)
}

// TestSanitizeBooks_OutOfRangeCreatedAt ensures timestamps beyond int64
// fall back to the import time like any unusable value.
func TestSanitizeBooks_OutOfRangeCreatedAt(t *testing.T) {
	raws, err := ParseImport([]byte(`[{"title":"Huge","createdAt":1e300},{"title":"Negative","createdAt":-1e19},{"title":"Edge","createdAt":9223372036854775808}]`))
	require.NoError(t, err)
	books, rejected := SanitizeBooks(raws, &SeqUIDHandler{}, importNow)
	require.Empty(t, rejected)
	require.Len(t, books, 3)
	for _, ib := range books {
		assert.False(t, ib.HasCreatedAt, ib.Title)
		assert.Equal(t, importNow.UnixMilli(), ib.CreatedAt, ib.Title)
	}
	assert.Equal(t, int64(0), coerceMillis(float64(1<<63)))
	assert.Equal(t, int64(1700000000000), coerceMillis(float64(1700000000000)))
}

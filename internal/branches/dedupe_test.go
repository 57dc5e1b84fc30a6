package branches

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankinfo/internal"
)

const rawBranchInfo = `[
  {"institution": "003", "branch": "00236", "name": "Transit B"},
  {"institution": "001", "branch": "09980", "name": "first", "city": "Toronto"},
  {"institution": "001", "branch": "09980", "name": "second"},
  {"institution": "819", "branch": "00267"},
  {"name": "no codes"},
  {"branch": null}
]`

func mustDecode(t *testing.T, blob string) []internal.BranchRecord {
	t.Helper()
	records, err := DecodeRecords([]byte(blob))
	require.NoError(t, err)
	return records
}

func keys(records []internal.BranchRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key())
	}
	return out
}

func TestDedupeFirstWinsSorted(t *testing.T) {
	records := mustDecode(t, rawBranchInfo)
	out := Dedupe(records)

	assert.Equal(t, []string{"", "00109980", "00300236", "81900267"}, keys(out))
	assert.Contains(t, string(out[1].Raw), `"first"`)
	// degenerate key: the record without codes came first
	assert.Contains(t, string(out[0].Raw), `"no codes"`)
}

func TestDedupeProperties(t *testing.T) {
	records := mustDecode(t, rawBranchInfo)
	once := Dedupe(records)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)

	seen := map[string]bool{}
	for i, r := range once {
		assert.False(t, seen[r.Key()], "duplicate key %q", r.Key())
		seen[r.Key()] = true
		if i > 0 {
			assert.LessOrEqual(t, once[i-1].Key(), r.Key())
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}

func TestBuildIndexCountsDropped(t *testing.T) {
	idx := BuildIndex(mustDecode(t, rawBranchInfo))
	assert.Len(t, idx.ByKey, 4)
	assert.Equal(t, 2, idx.Dropped)
}

func TestNumericCodes(t *testing.T) {
	records := mustDecode(t, `[{"institution": 1, "branch": 9980}]`)
	assert.Equal(t, "19980", records[0].Key())
}

func TestNonObjectEntriesKeepEmptyKey(t *testing.T) {
	records := mustDecode(t, `["x", 7, null, {"institution":"001","branch":"09980"}]`)
	assert.Equal(t, []string{"", "", "", "00109980"}, keys(records))
	assert.JSONEq(t, `"x"`, string(records[0].Raw))
}

func TestDecodeRecordsRejectsMalformed(t *testing.T) {
	_, err := DecodeRecords([]byte(`[{"institution": "001",]`))
	assert.Error(t, err)
}

func TestDedupeFile(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "branch-info.json")
	out := filepath.Join(tmp, "out", "branch-info-processed.json")
	require.NoError(t, os.WriteFile(in, []byte(rawBranchInfo), 0o644))

	_, res, err := DedupeFile(in, out)
	require.NoError(t, err)
	assert.Equal(t, DedupeResult{Read: 6, Kept: 4, Dropped: 2}, res)

	blob, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(blob)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"name\": \"no codes\"\n  },"), text)
	// source field order is preserved
	assert.Contains(t, text, "{\n    \"institution\": \"001\",\n    \"branch\": \"09980\",\n    \"name\": \"first\",\n    \"city\": \"Toronto\"\n  }")

	again, err := LoadRecords(out)
	require.NoError(t, err)
	assert.Equal(t, keys(Dedupe(again)), keys(again))
}

func TestWriteNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numbers.txt")
	n, err := WriteNumbers(path, Dedupe(mustDecode(t, rawBranchInfo)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "00109980\n00300236\n81900267\n", string(blob))
}

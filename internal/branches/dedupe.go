package branches

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bankinfo/internal"
)

type DedupeResult struct {
	Read    int
	Kept    int
	Dropped int
}

// Dedupe keeps the first record per institution+branch key and returns the
// survivors ordered by key. Input records are never modified.
func Dedupe(records []internal.BranchRecord) []internal.BranchRecord {
	return BuildIndex(records).Sorted()
}

func LoadRecords(path string) ([]internal.BranchRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(blob)
}

func DecodeRecords(blob []byte) ([]internal.BranchRecord, error) {
	var records []internal.BranchRecord
	if err := json.Unmarshal(bytes.TrimSpace(blob), &records); err != nil {
		return nil, fmt.Errorf("decode branch records: %w", err)
	}
	return records, nil
}

// WriteRecords overwrites path with records as a two-space indented JSON array.
func WriteRecords(path string, records []internal.BranchRecord) error {
	if records == nil {
		records = []internal.BranchRecord{}
	}
	blob, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	blob = append(blob, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

// WriteNumbers writes one 8-digit branch number per line, skipping records
// whose key is not a valid branch number.
func WriteNumbers(path string, records []internal.BranchRecord) (int, error) {
	var b strings.Builder
	written := 0
	for _, r := range records {
		n, err := ParseBranchNumber(r.Key())
		if err != nil {
			continue
		}
		b.WriteString(n.String())
		b.WriteByte('\n')
		written++
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	return written, os.WriteFile(path, []byte(b.String()), 0o644)
}

func DedupeFile(inputPath, outputPath string) ([]internal.BranchRecord, DedupeResult, error) {
	records, err := LoadRecords(inputPath)
	if err != nil {
		return nil, DedupeResult{}, err
	}
	idx := BuildIndex(records)
	sorted := idx.Sorted()
	if err := WriteRecords(outputPath, sorted); err != nil {
		return nil, DedupeResult{}, err
	}
	return sorted, DedupeResult{Read: len(records), Kept: len(sorted), Dropped: idx.Dropped}, nil
}

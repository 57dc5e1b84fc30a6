package internal

import (
	"bytes"
	"encoding/json"
	"errors"
)

// BranchRecord is one entry of the raw branch-info file. Raw keeps the source
// object untouched so fields other than institution/branch survive a rewrite.
type BranchRecord struct {
	Institution string
	Branch      string
	Raw         json.RawMessage
}

func (r BranchRecord) Key() string {
	return r.Institution + r.Branch
}

func (r *BranchRecord) UnmarshalJSON(data []byte) error {
	// Non-object entries are kept with an empty key.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
	}
	r.Institution = scalarText(fields["institution"])
	r.Branch = scalarText(fields["branch"])
	r.Raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

func (r BranchRecord) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(map[string]string{"institution": r.Institution, "branch": r.Branch})
}

// scalarText returns strings unquoted and numbers as their literal text.
// Anything else (null, objects, missing) is empty.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

type BranchNumber struct {
	Institution string
	Branch      string
}

func (n BranchNumber) String() string {
	return n.Institution + n.Branch
}

type ScrapedAddress struct {
	BranchName string
	Address    string
}

// Line renders the address as it goes into the CSV address column.
func (a ScrapedAddress) Line() string {
	if a.BranchName != "" {
		return a.BranchName + ", " + a.Address
	}
	return a.Address
}

type AddressStatus string

const (
	AddressOK     AddressStatus = "ok"
	AddressFailed AddressStatus = "failed"
)

type AddressRow struct {
	ID          int
	RunID       string
	Number      string
	Institution string
	Branch      string
	URL         string
	BranchName  string
	Address     string
	Line        string
	Status      AddressStatus
	Error       *string
	ScrapedAt   string
}

type RunRow struct {
	ID         int
	TraceID    string
	Source     string
	StartedAt  string
	FinishedAt *string
	Counts     map[string]int
}

type RunFailure struct {
	Number string `json:"number"`
	Error  string `json:"error"`
}

package branches

import (
	"errors"
	"testing"
)

func TestBuildURL(t *testing.T) {
	got, err := BuildURL("http://canada-banks-info.com/routing-numbers/royal-trust-corporation-of-canada-routing-numbers/", "00109980")
	if err != nil {
		t.Fatal(err)
	}
	want := "http://canada-banks-info.com/routing-numbers/royal-trust-corporation-of-canada-routing-numbers/09980-001/"
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestBuildURLInvalid(t *testing.T) {
	for _, input := range []string{"1234", "001099801", "0010998a", ""} {
		_, err := BuildURL("http://example.test/x", input)
		if !errors.Is(err, ErrInvalidBranchNumber) {
			t.Fatalf("input=%q err=%v", input, err)
		}
	}
}

func TestParseBranchNumber(t *testing.T) {
	n, err := ParseBranchNumber(" 81900267\n")
	if err != nil {
		t.Fatal(err)
	}
	if n.Institution != "819" || n.Branch != "00267" || n.String() != "81900267" {
		t.Fatalf("unexpected %+v", n)
	}
}

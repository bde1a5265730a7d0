package repl

import (
	"testing"

	"github.com/duynguyendang/digivolve/pkg/evolution"
)

func strp(s string) *string { return &s }
func intp(v int) *int       { return &v }

func TestDescribe(t *testing.T) {
	cases := []struct {
		name string
		in   evolution.Descriptor
		want string
	}{
		{
			name: "full descriptor",
			in:   evolution.Descriptor{Name: "Agumon", Number: intp(4), Stage: strp("Child"), Attribute: strp("Vaccine")},
			want: "Agumon (Child, Vaccine) #4",
		},
		{
			name: "stage only",
			in:   evolution.Descriptor{Name: "Koromon", Stage: strp("Baby II")},
			want: "Koromon (Baby II)",
		},
		{
			name: "bare name",
			in:   evolution.Descriptor{Name: "Greymon"},
			want: "Greymon",
		},
	}

	for _, tc := range cases {
		if got := describe(tc.in); got != tc.want {
			t.Errorf("%s: Expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"Virus": 2, "Free": 1, "Vaccine": 3}
	got := sortedKeys(m)

	want := []string{"Free", "Vaccine", "Virus"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %q at %d, got %q", want[i], i, got[i])
		}
	}
}

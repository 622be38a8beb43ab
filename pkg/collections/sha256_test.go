package collections

import (
	"strings"
	"testing"
)

func TestSha256(t *testing.T) {
	for name, tc := range map[string]struct {
		in   string
		want string
	}{
		"empty": {
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		"abc": {
			in:   "abc",
			want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Sha256(strings.NewReader(tc.in))
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Sha256(%q): want %s, got %s", tc.in, tc.want, got)
			}
		})
	}
}

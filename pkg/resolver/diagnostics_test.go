package resolver_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/resolver"
	"github.com/stackb/thrift-deps/pkg/resolver/mocks"
)

func TestAmbiguousImportError(t *testing.T) {
	from := address.New("src/a", "", "a.thrift")
	x := address.New("src/b", "x", "b.thrift")
	y := address.New("src/b", "y", "b.thrift")
	z := address.New("src/b", "z", "b.thrift")

	for name, tc := range map[string]struct {
		err  *resolver.AmbiguousImportError
		want string
	}{
		"sorted candidates": {
			err:  resolver.NewAmbiguousImportError(from, "b.thrift", []address.Address{y, x}, nil),
			want: "The target src/a/a.thrift imports `b.thrift` ambiguously: it could be one of ['src/b/b.thrift:x', 'src/b/b.thrift:y']",
		},
		"two excluded": {
			err:  resolver.NewAmbiguousImportError(from, "b.thrift", []address.Address{x, y}, []address.Address{z, z}),
			want: "The target src/a/a.thrift imports `b.thrift` ambiguously: it could be one of ['src/b/b.thrift:x', 'src/b/b.thrift:y'] (2 other candidates excluded by \"!\" entries in the dependencies field)",
		},
	} {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.err.Error()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmitSorted(t *testing.T) {
	a := address.New("a", "", "a.thrift")
	b := address.New("b", "", "b.thrift")
	x := address.New("x", "1", "x.thrift")
	y := address.New("x", "2", "x.thrift")

	d1 := resolver.NewAmbiguousImportError(b, "x.thrift", []address.Address{x, y}, nil)
	d2 := resolver.NewAmbiguousImportError(a, "z.thrift", []address.Address{x, y}, nil)
	d3 := resolver.NewAmbiguousImportError(a, "x.thrift", []address.Address{x, y}, nil)

	capturer := mocks.NewDiagnosticsCapturer(t)
	resolver.Emit(capturer.Sink, []*resolver.AmbiguousImportError{d1, d2, d3})

	want := []*resolver.AmbiguousImportError{d3, d2, d1}
	if diff := cmp.Diff(want, capturer.Got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	// a nil sink is a no-op
	resolver.Emit(nil, want)
}

func TestLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	sink := resolver.NewLoggerSink(logger, true)

	from := address.New("a", "", "a.thrift")
	diag := resolver.NewAmbiguousImportError(from, "x.thrift", []address.Address{
		address.New("x", "1", "x.thrift"),
		address.New("x", "2", "x.thrift"),
	}, nil)
	sink.ReportAmbiguousImport(diag)

	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"level":   "warn",
		"from":    "a/a.thrift",
		"import":  "x.thrift",
		"hint":    diag.Hint(),
		"message": diag.Error(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCollectingSink(t *testing.T) {
	sink := &resolver.CollectingSink{}
	x := address.New("x", "1", "x.thrift")
	y := address.New("x", "2", "x.thrift")
	sink.ReportAmbiguousImport(resolver.NewAmbiguousImportError(address.New("b", "", "b.thrift"), "x.thrift", []address.Address{x, y}, nil))
	sink.ReportAmbiguousImport(resolver.NewAmbiguousImportError(address.New("a", "", "a.thrift"), "x.thrift", []address.Address{x, y}, nil))

	got := sink.Messages()
	want := []string{
		"The target a/a.thrift imports `x.thrift` ambiguously: it could be one of ['x/x.thrift:1', 'x/x.thrift:2']",
		"The target b/b.thrift imports `x.thrift` ambiguously: it could be one of ['x/x.thrift:1', 'x/x.thrift:2']",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

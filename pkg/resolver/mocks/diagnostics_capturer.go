package mocks

import (
	"testing"

	resolver "github.com/stackb/thrift-deps/pkg/resolver"
	mock "github.com/stretchr/testify/mock"
)

type DiagnosticsCapturer struct {
	Sink *DiagnosticsSink
	Got  []*resolver.AmbiguousImportError
}

func (c *DiagnosticsCapturer) capture(diag *resolver.AmbiguousImportError) bool {
	c.Got = append(c.Got, diag)
	return true
}

func NewDiagnosticsCapturer(t *testing.T) *DiagnosticsCapturer {
	c := &DiagnosticsCapturer{
		Sink: NewDiagnosticsSink(t),
	}

	c.Sink.
		On("ReportAmbiguousImport", mock.MatchedBy(c.capture)).
		Maybe().
		Return()

	return c
}

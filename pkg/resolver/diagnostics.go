package resolver

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stackb/thrift-deps/pkg/address"
)

// DiagnosticsSink receives ambiguity diagnostics.  Implementations only
// observe; they cannot change the resolution outcome.
type DiagnosticsSink interface {
	ReportAmbiguousImport(diag *AmbiguousImportError)
}

// LoggerSink reports diagnostics as zerolog warnings.
type LoggerSink struct {
	logger zerolog.Logger
	hints  bool
}

// NewLoggerSink constructs a sink writing to the given logger.  If hints is
// true, the fix-it advice is attached to each message.
func NewLoggerSink(logger zerolog.Logger, hints bool) *LoggerSink {
	return &LoggerSink{logger: logger, hints: hints}
}

// ReportAmbiguousImport implements DiagnosticsSink.
func (s *LoggerSink) ReportAmbiguousImport(diag *AmbiguousImportError) {
	event := s.logger.Warn().
		Str("from", diag.From.String()).
		Str("import", diag.Imp)
	if s.hints {
		event = event.Str("hint", diag.Hint())
	}
	event.Msg(diag.Error())
}

// CollectingSink accumulates diagnostics in memory.  It is safe for concurrent
// use.
type CollectingSink struct {
	mu    sync.Mutex
	diags []*AmbiguousImportError
}

// ReportAmbiguousImport implements DiagnosticsSink.
func (s *CollectingSink) ReportAmbiguousImport(diag *AmbiguousImportError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, diag)
}

// Diagnostics returns the collected diagnostics sorted by importing address
// and then import.
func (s *CollectingSink) Diagnostics() []*AmbiguousImportError {
	s.mu.Lock()
	defer s.mu.Unlock()
	diags := append([]*AmbiguousImportError(nil), s.diags...)
	SortDiagnostics(diags)
	return diags
}

// Messages returns the sorted diagnostic messages.
func (s *CollectingSink) Messages() []string {
	diags := s.Diagnostics()
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.Error()
	}
	return msgs
}

// SortDiagnostics orders diagnostics by importing address, then import.
func SortDiagnostics(diags []*AmbiguousImportError) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.From != b.From {
			return address.Less(a.From, b.From)
		}
		return a.Imp < b.Imp
	})
}

// Emit sends the diagnostics to the sink in sorted order.  A nil sink drops
// them.
func Emit(sink DiagnosticsSink, diags []*AmbiguousImportError) {
	if sink == nil {
		return
	}
	sorted := append([]*AmbiguousImportError(nil), diags...)
	SortDiagnostics(sorted)
	for _, d := range sorted {
		sink.ReportAmbiguousImport(d)
	}
}

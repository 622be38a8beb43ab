package main

import (
	"github.com/pcj/mobyprogress"
	"github.com/rs/zerolog"
)

// progressLogger writes progress updates as log events.
type progressLogger struct {
	logger zerolog.Logger
}

func newProgressLogger(logger zerolog.Logger) *progressLogger {
	return &progressLogger{logger: logger}
}

// WriteProgress implements mobyprogress.Output.
func (p *progressLogger) WriteProgress(prog mobyprogress.Progress) error {
	event := p.logger.Info()
	if !prog.LastUpdate {
		event = p.logger.Debug()
	}
	event.
		Str("id", prog.ID).
		Int64("current", prog.Current).
		Int64("total", prog.Total).
		Msg(prog.Action)
	return nil
}

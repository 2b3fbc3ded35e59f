package scraper

import (
	"github.com/fundscout/portal-scraper/internal/model"
)

// ProgressFunc receives ordered progress events during a streaming run. It
// is invoked synchronously from the scrape loop; implementations should
// return quickly.
type ProgressFunc func(model.ProgressEvent)

// emitter is a nil-safe wrapper around an optional ProgressFunc. A blocking
// run simply carries a nil emitter and every emit is a no-op.
type emitter struct {
	fn ProgressFunc
}

func (e emitter) emit(ev model.ProgressEvent) {
	if e.fn != nil {
		e.fn(ev)
	}
}

func (e emitter) phase(phase, detail string) {
	e.emit(model.ProgressEvent{Kind: model.EventPhase, Payload: model.PhasePayload{Phase: phase, Detail: detail}})
}

func (e emitter) phaseCount(phase string, count int) {
	e.emit(model.ProgressEvent{Kind: model.EventPhase, Payload: model.PhasePayload{Phase: phase, Count: count}})
}

func (e emitter) page(page, count int) {
	e.emit(model.ProgressEvent{Kind: model.EventPage, Payload: model.PagePayload{Page: page, Count: count}})
}

func (e emitter) progress(current, total int, title string) {
	percent := 0
	if total > 0 {
		percent = current * 100 / total
	}
	e.emit(model.ProgressEvent{Kind: model.EventProgress, Payload: model.ProgressPayload{
		Current: current,
		Total:   total,
		Percent: percent,
		Title:   truncate(title, 40),
	}})
}

func (e emitter) record(rec model.Record) {
	e.emit(model.ProgressEvent{Kind: model.EventRecord, Payload: rec})
}

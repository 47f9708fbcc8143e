package main

import (
	"sync"

	"github.com/zavvdev/circular-history/internal/events"
	"github.com/zavvdev/circular-history/internal/history"
	"github.com/zavvdev/circular-history/internal/metrics"
)

// timeline wraps a history buffer with the mutex the buffer itself does not
// carry: Kafka commits and HTTP navigation arrive on different goroutines.
type timeline struct {
	mu    sync.Mutex
	edits *history.Buffer[string]
	ops   *metrics.Ops
}

// timelineState is what navigation and inspection endpoints respond with.
type timelineState struct {
	Value        string `json:"value,omitempty"`
	Empty        bool   `json:"empty"`
	Index        int    `json:"index"`
	StartReached bool   `json:"start_reached"`
	EndReached   bool   `json:"end_reached"`
}

type timelineSlot struct {
	Value string `json:"value,omitempty"`
	Hole  bool   `json:"hole"`
}

func newTimeline(capacity int, ops *metrics.Ops) (*timeline, error) {
	edits, err := history.New[string](capacity, history.String)
	if err != nil {
		return nil, err
	}
	return &timeline{
		edits: edits,
		ops:   ops,
	}, nil
}

func (tl *timeline) state() timelineState {
	value, ok := tl.edits.Current()
	return timelineState{
		Value:        value,
		Empty:        !ok,
		Index:        tl.edits.CurrentIndex(),
		StartReached: tl.edits.StartReached(),
		EndReached:   tl.edits.EndReached(),
	}
}

func (tl *timeline) CommitEdit(edit events.Edit) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if _, err := tl.edits.Commit(edit.Body); err != nil {
		return err
	}
	tl.ops.Record("commit", 1)
	return nil
}

func (tl *timeline) Current() timelineState {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.state()
}

func (tl *timeline) Undo() timelineState {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.edits.MoveBackward()
	tl.ops.Record("undo", 1)
	return tl.state()
}

func (tl *timeline) Redo() timelineState {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.edits.MoveForward()
	tl.ops.Record("redo", 1)
	return tl.state()
}

func (tl *timeline) Clear() timelineState {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.edits.Clear()
	tl.ops.Record("clear", 1)
	return tl.state()
}

func (tl *timeline) Dump(discardHoles bool) []timelineSlot {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	slots := tl.edits.Dump(discardHoles)
	out := make([]timelineSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, timelineSlot{
			Value: s.Value,
			Hole:  !s.Committed,
		})
	}
	return out
}

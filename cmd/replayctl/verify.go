package main

import (
	"fmt"
	"reflect"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/journal"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/predict"
	"github.com/tianzhicdev/tetris-battle-sub004/internal/sim"
)

type verifyReport struct {
	Spans         int
	Matched       int
	Diverged      int
	DroppedInputs int
	Details       []string
}

// verifySession refolds every acknowledged input span over the snapshot that
// preceded it and compares the result with the snapshot that acknowledged it.
func verifySession(store *journal.Store, sessionID string) (*verifyReport, error) {
	inputs, err := store.Inputs(sessionID)
	if err != nil {
		return nil, err
	}
	snapshots, err := store.Snapshots(sessionID)
	if err != nil {
		return nil, err
	}
	if len(snapshots) < 2 {
		return &verifyReport{}, nil
	}

	report := &verifyReport{}
	baseline := snapshots[0].State
	prevAck := snapshots[0].AckSeq

	for _, snapshot := range snapshots[1:] {
		if snapshot.AckSeq <= prevAck {
			baseline = snapshot.State
			continue
		}
		span := spanInputs(inputs, prevAck, snapshot.AckSeq)

		first, droppedFirst := foldSpan(baseline, span)
		second, droppedSecond := foldSpan(baseline, span)
		if droppedFirst != droppedSecond || !reflect.DeepEqual(first, second) {
			return nil, fmt.Errorf("transition function is not deterministic over span %d..%d", prevAck+1, snapshot.AckSeq)
		}

		report.Spans++
		report.DroppedInputs += droppedFirst
		if predict.Equivalent(first, snapshot.State) {
			report.Matched++
		} else {
			report.Diverged++
			report.Details = append(report.Details, fmt.Sprintf(
				"span %d..%d diverged: folded score=%d stars=%d lines=%d, server score=%d stars=%d lines=%d",
				prevAck+1, snapshot.AckSeq,
				first.Score, first.Stars, first.Lines,
				snapshot.State.Score, snapshot.State.Stars, snapshot.State.Lines,
			))
		}

		baseline = snapshot.State
		prevAck = snapshot.AckSeq
	}
	return report, nil
}

func spanInputs(inputs []journal.InputRecord, afterSeq, throughSeq uint64) []journal.InputRecord {
	var span []journal.InputRecord
	for _, input := range inputs {
		if input.Seq > afterSeq && input.Seq <= throughSeq {
			span = append(span, input)
		}
	}
	return span
}

func foldSpan(baseline sim.GameState, span []journal.InputRecord) (sim.GameState, int) {
	state := baseline.Clone()
	dropped := 0
	for _, input := range span {
		next, ok := sim.Apply(state, input.Action)
		if !ok {
			dropped++
			continue
		}
		state = next
	}
	return state, dropped
}

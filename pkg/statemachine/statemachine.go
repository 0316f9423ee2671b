// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package statemachine

import (
	"errors"
)

// notRunningState is returned once the machine ran past its last state
// or was aborted.
const notRunningState = ""

type Direction int64

const (
	Forward Direction = iota
	Stop
)

// StateMachine walks an ordered list of lifecycle states, one step at
// a time, with an abort escape hatch from any state. The contract
// deployer drives one instance per contract.
type StateMachine struct {
	index   int
	states  []string
	aborted bool
}

func New(states []string) (*StateMachine, error) {
	if len(states) == 0 {
		return nil, errors.New("state machine needs at least one state")
	}
	return &StateMachine{
		states: states,
	}, nil
}

func (sm *StateMachine) CurrentState() string {
	if sm.aborted || sm.index < 0 || sm.index >= len(sm.states) {
		return notRunningState
	}
	return sm.states[sm.index]
}

func (sm *StateMachine) Running() bool {
	return sm.CurrentState() != notRunningState
}

// Aborted reports whether the machine was stopped before reaching the
// end of its state list.
func (sm *StateMachine) Aborted() bool {
	return sm.aborted
}

func (sm *StateMachine) Next(direction Direction) {
	switch direction {
	case Forward:
		sm.index++
	case Stop:
		sm.aborted = true
	}
}

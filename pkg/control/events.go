// Copyright 2021 The VPN House Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package control

const (
	EventRestart = iota + 1
	EventSetLogLevel
)

type Event struct {
	Type int
	Info interface{}
}

// EventManager delivers runtime events (restart, log level change)
// to the loop running in Exec.
type EventManager struct {
	ch chan Event
}

func NewEventManager() *EventManager {
	return &EventManager{
		ch: make(chan Event),
	}
}

func (m *EventManager) EmitEvent(event int) {
	m.ch <- Event{
		Type: event,
	}
}

func (m *EventManager) EmitEventWithInfo(event int, info interface{}) {
	m.ch <- Event{
		Type: event,
		Info: info,
	}
}

func (m *EventManager) EventChannel() chan Event {
	return m.ch
}

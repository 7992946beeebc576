package notify

import (
	"encoding/json"
	"strings"
)

// Protocol selects how push frames are framed on the wire.
type Protocol string

const (
	// ProtocolSocketIO is Engine.IO v4 / Socket.IO v5 over a websocket transport.
	ProtocolSocketIO Protocol = "socketio"
	// ProtocolJSON is one JSON object per frame with an "event" member.
	ProtocolJSON Protocol = "json"
)

// ParseProtocol maps a config value to a Protocol, defaulting to Socket.IO.
func ParseProtocol(s string) Protocol {
	if Protocol(strings.ToLower(strings.TrimSpace(s))) == ProtocolJSON {
		return ProtocolJSON
	}
	return ProtocolSocketIO
}

// Engine.IO packet types, and the Socket.IO packet types carried in a message.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioMessage = '4'

	sioEvent = '2'
)

// frameAction is what the listener should do with one inbound frame.
type frameAction struct {
	event string // non-empty when the frame carries a named event
	reply string // non-empty when the frame must be answered
	close bool   // the server asked to close the session
}

func decodeFrame(p Protocol, frame []byte) frameAction {
	if p == ProtocolJSON {
		return decodeJSONFrame(frame)
	}
	return decodeSocketIOFrame(string(frame))
}

func decodeJSONFrame(frame []byte) frameAction {
	var msg struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(frame, &msg); err == nil {
		return frameAction{event: msg.Event}
	}
	// A bare event name is accepted as well.
	return frameAction{event: strings.TrimSpace(string(frame))}
}

func decodeSocketIOFrame(frame string) frameAction {
	if frame == "" {
		return frameAction{}
	}

	switch frame[0] {
	case eioOpen:
		// Join the default namespace once the transport is open.
		return frameAction{reply: "40"}
	case eioPing:
		return frameAction{reply: "3" + frame[1:]}
	case eioClose:
		return frameAction{close: true}
	case eioMessage:
		if len(frame) < 2 || frame[1] != sioEvent {
			return frameAction{}
		}
		return frameAction{event: socketIOEventName(frame[2:])}
	}
	return frameAction{}
}

// socketIOEventName extracts the event name from `[/ns,][ack]["name",...]`.
func socketIOEventName(body string) string {
	if strings.HasPrefix(body, "/") {
		comma := strings.IndexByte(body, ',')
		if comma < 0 {
			return ""
		}
		body = body[comma+1:]
	}
	// Skip an optional ack id.
	body = strings.TrimLeft(body, "0123456789")

	var args []json.RawMessage
	if err := json.Unmarshal([]byte(body), &args); err != nil || len(args) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return ""
	}
	return name
}

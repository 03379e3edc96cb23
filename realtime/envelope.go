package realtime

import "encoding/json"

// Role names one logical client stream. Streams for different roles
// never share messages.
type Role string

const (
	RoleDisplay  Role = "display"
	RoleOperator Role = "operator"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDisplay, RoleOperator:
		return Role(s), true
	}
	return "", false
}

// Envelope is the wire frame for every outbound message. Seq increases
// monotonically per connection and restarts from 1 after a reconnect.
type Envelope struct {
	Type string          `json:"type"`
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	TypeSnapshot   = "snapshot"
	TypeExpression = "expression"
	TypeMotion     = "motion"
	TypeSpeak      = "speak_segment"
	TypeStopOutput = "stop_output"
	TypeKeepAlive  = "keepalive"
)

// Inbound is a frame sent by a client. CommandID deduplicates retried
// sends: a repeated id on the same connection is dropped.
type Inbound struct {
	Type      string          `json:"type"`
	CommandID string          `json:"command_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

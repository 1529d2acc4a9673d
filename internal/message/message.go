// Package message defines the xclipy IPC protocol.
//
// Every message is one line of JSON: <json>\n. A client sends exactly one
// request per connection and reads one response, except for WATCH, where the
// daemon keeps writing EVENT messages until either side hangs up.
package message

import (
	"encoding/json"
	"fmt"

	"go.klb.dev/xclipy/internal/settings"
)

// Type identifies the kind of message.
type Type string

// Requests.
const (
	TypeHistory Type = "HISTORY"
	TypeCopy    Type = "COPY"
	TypeRemove  Type = "REMOVE"
	TypeClear   Type = "CLEAR"
	TypeStatus  Type = "STATUS"
	TypeSet     Type = "SET"
	TypeWatch   Type = "WATCH"
)

// Responses.
const (
	TypeOK             Type = "OK"
	TypeHistoryResult  Type = "HISTORY_RESULT"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeEvent          Type = "EVENT"
	TypeError          Type = "ERROR"
)

// Message is the top-level wire envelope. Which fields are set depends on Type.
type Message struct {
	Type Type `json:"type"`

	// COPY: exactly one of Text, Files or Index.
	// REMOVE: Text or Index.
	Text  string   `json:"text,omitempty"`
	Files []string `json:"files,omitempty"`
	Index *int     `json:"index,omitempty"`

	// COPY with Index: "auto" (default), "text" or "files".
	As string `json:"as,omitempty"`

	// SET
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	// HISTORY_RESULT, STATUS_RESPONSE and historyChanged events.
	History []string `json:"history,omitempty"`

	// STATUS_RESPONSE
	Settings           *settings.Settings `json:"settings,omitempty"`
	HotkeySupported    bool               `json:"hotkey_supported,omitempty"`
	HotkeyRegistered   bool               `json:"hotkey_registered,omitempty"`
	AutoStartInstalled bool               `json:"autostart_installed,omitempty"`

	// OK after REMOVE
	Removed bool `json:"removed,omitempty"`

	// EVENT
	Event string `json:"event,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// IndexOf returns a pointer to i for the Index field.
func IndexOf(i int) *int { return &i }

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Err returns the message's error, or nil unless Type is ERROR.
func (m *Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	return fmt.Errorf("daemon: %s", m.Error)
}

// MarshalJSON always writes history on messages that carry one, so an
// emptied history is sent as [] rather than dropped.
func (m *Message) MarshalJSON() ([]byte, error) {
	type plain Message
	if !m.carriesHistory() {
		return json.Marshal((*plain)(m))
	}
	return json.Marshal(struct {
		*plain
		History []string `json:"history"`
	}{(*plain)(m), m.HistoryOf()})
}

func (m *Message) carriesHistory() bool {
	switch m.Type {
	case TypeHistoryResult, TypeStatusResponse:
		return true
	case TypeEvent:
		return m.Event == "historyChanged"
	}
	return false
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// HistoryOf returns History, never nil.
func (m *Message) HistoryOf() []string {
	if m.History == nil {
		return []string{}
	}
	return m.History
}

package main

import (
	"encoding/json"
)

// Event names on the wire.
const (
	eventConnect     = "connect"
	eventSendMessage = "sendMessage"
	eventMessage     = "message"
)

// frame is one websocket text message: a named event and its payload.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type message struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Body       string `json:"message"`
}

type connectData struct {
	SID string `json:"sid"`
}

func encodeFrame(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Event: event, Data: raw})
}

func decodeFrame(raw []byte) (frame, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return frame{}, &MalformedMessageError{Reason: "is not an event frame", Err: err}
	}
	if f.Event == "" {
		return frame{}, &MalformedMessageError{Field: "event", Reason: "is required"}
	}
	return f, nil
}

// decodeMessage checks field presence and types. senderId and message are
// required; receiverId may be absent but must be a string when present.
func decodeMessage(data []byte) (message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return message{}, &MalformedMessageError{Reason: "payload must be a JSON object", Err: err}
	}

	var msg message
	var err error
	if msg.SenderID, err = stringField(fields, "senderId", true); err != nil {
		return message{}, err
	}
	if msg.ReceiverID, err = stringField(fields, "receiverId", false); err != nil {
		return message{}, err
	}
	if msg.Body, err = stringField(fields, "message", true); err != nil {
		return message{}, err
	}
	return msg, nil
}

func stringField(fields map[string]json.RawMessage, name string, required bool) (string, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		if required {
			return "", &MalformedMessageError{Field: name, Reason: "is required"}
		}
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &MalformedMessageError{Field: name, Reason: "must be a string", Err: err}
	}
	return s, nil
}

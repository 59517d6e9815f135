package main

import (
	"errors"
	"fmt"
)

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// DuplicateIDError is returned by the registry when a connection id is
// already registered.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate connection id %q", e.ID)
}

// MalformedMessageError reports an inbound payload that could not be decoded
// into a message. Field is empty when the payload as a whole is bad.
type MalformedMessageError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedMessageError) Error() string {
	msg := "malformed message"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedMessageError) Unwrap() error {
	return e.Err
}

// DeliveryError is a failed send to a single connection.
type DeliveryError struct {
	ID  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.ID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

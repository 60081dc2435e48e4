package domain

import "time"

type Sender string

const (
	SenderBuyer  Sender = "buyer"
	SenderSeller Sender = "seller"
)

type MessageKind string

const (
	MessageText         MessageKind = "text"
	MessageConfirmation MessageKind = "confirmation"
	MessageTimeout      MessageKind = "timeout"
)

type ChatMessage struct {
	ID        string      `json:"id"`
	Sender    Sender      `json:"sender"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"type,omitempty"`
}

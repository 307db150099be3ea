package messages

import "time"

// PinUpdate is the wire message the device bridge publishes for every pin
// change: one scalar value per (token, pin). Value is a JSON number or
// string; the bridge does not validate the type.
type PinUpdate struct {
	Token     string    `json:"token"`
	Pin       string    `json:"pin"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

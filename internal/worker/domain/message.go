package domain

import "github.com/luciusscala/hackmitmentra/internal/event"

// EventMessage is a decoded delivery waiting for a pool worker
type EventMessage struct {
	Event       *event.Transition
	DeliveryTag uint64
}

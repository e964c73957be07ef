package defs

import (
	"gitlab.com/appserver.net/internal/domain"
)

// Envelope is a decoded request message. Exactly one payload field is set, as dictated by Type.
type Envelope struct {
	Type       byte
	Descriptor *domain.ConnectivityDescriptor
	Job        *domain.Job
}

// NewRegisterEnvelope wraps a satellite's self descriptor
func NewRegisterEnvelope(descriptor domain.ConnectivityDescriptor) Envelope {
	return Envelope{Type: MsgRegisterSatellite, Descriptor: &descriptor}
}

// NewJobEnvelope wraps a job request
func NewJobEnvelope(job *domain.Job) Envelope {
	return Envelope{Type: MsgJobRequest, Job: job}
}

// RegisterAckData is the optional reply to a registration
type RegisterAckData struct {
	Name  string `json:"name"`
	Added bool   `json:"added"`
}

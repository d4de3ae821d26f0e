package app

import (
	"github.com/pion/webrtc/v4"

	"huddle/internal/domain"
)

// Outbound payload shapes. Every frame carries a type discriminator;
// clients switch on it. Offers, answers and candidates are relayed
// verbatim, the server never inspects their contents.

type UsersPayload struct {
	Type  string            `json:"type"`
	Users []*domain.Session `json:"users"`
}

type ChatPayload struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

// DMPayload is delivered twice per directed message: to the target
// with From set to the sender, and back to the sender with From set to
// the target so the sender's UI files the echo into the same thread.
type DMPayload struct {
	Type    string         `json:"type"`
	From    domain.ConnID  `json:"from"`
	Message domain.Message `json:"message"`
}

type TypingPayload struct {
	Type     string        `json:"type"`
	ID       domain.ConnID `json:"id"`
	Name     string        `json:"name"`
	IsTyping bool          `json:"isTyping"`
}

type CallOfferPayload struct {
	Type     string                    `json:"type"`
	From     domain.ConnID             `json:"from"`
	FromName string                    `json:"fromName"`
	Offer    webrtc.SessionDescription `json:"offer"`
}

type CallAnswerPayload struct {
	Type   string                    `json:"type"`
	Answer webrtc.SessionDescription `json:"answer"`
}

type CandidatePayload struct {
	Type      string                  `json:"type"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// CallEndedPayload carries no reason when relaying a peer's explicit
// hang-up; synthetic ends produced by the coordinator set one.
type CallEndedPayload struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

const (
	EndReasonUnavailable      = "unavailable"
	EndReasonBusy             = "busy"
	EndReasonTimeout          = "timeout"
	EndReasonPeerDisconnected = "peer-disconnected"
)

package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"huddle/internal/domain"
)

// handleFrame decodes the envelope and dispatches to the router. Bad
// JSON and unknown types are logged and dropped; nothing here is ever
// surfaced back to the sender as an error.
func (ctl *Controller) handleFrame(id domain.ConnID, clientToken string, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(id, clientToken, c, data)
	case "message":
		var p struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
			return
		}
		ctl.Router.Chat(id, p.Text)
	case "dm":
		var p struct {
			To   domain.ConnID `json:"to"`
			Text string        `json:"text"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad dm payload")
			return
		}
		ctl.Router.Direct(id, p.To, p.Text)
	case "typing":
		var p struct {
			IsTyping bool `json:"isTyping"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad typing payload")
			return
		}
		ctl.Router.Typing(id, p.IsTyping)
	case "call-offer":
		var p struct {
			To    domain.ConnID             `json:"to"`
			Offer webrtc.SessionDescription `json:"offer"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
			return
		}
		ctl.Router.CallOffer(id, p.To, p.Offer)
	case "call-answer":
		var p struct {
			To     domain.ConnID             `json:"to"`
			Answer webrtc.SessionDescription `json:"answer"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
			return
		}
		ctl.Router.CallAnswer(id, p.To, p.Answer)
	case "ice-candidate":
		var p struct {
			To        domain.ConnID           `json:"to"`
			Candidate webrtc.ICECandidateInit `json:"candidate"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
			return
		}
		ctl.Router.Candidate(id, p.To, p.Candidate)
	case "call-ended":
		var p struct {
			To domain.ConnID `json:"to"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad call-ended payload")
			return
		}
		ctl.Router.CallEnd(id, p.To)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) handleJoin(id domain.ConnID, clientToken string, c *wsConn, data []byte) {
	var p struct {
		Type      string `json:"type"`
		DeviceKey string `json:"deviceKey"`
		Name      string `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	// Clients that persist no deviceKey fall back to the durable
	// client-token cookie minted by the HTTP layer.
	if p.DeviceKey == "" {
		p.DeviceKey = clientToken
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("name", p.Name).Msg("join")
	ctl.Router.Join(id, c, p.DeviceKey, p.Name)
}

func (ctl *Controller) handlePing(c *wsConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = c.TrySend(b)
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/proptalk/proptalk/internal/config"
	apierrors "github.com/proptalk/proptalk/internal/errors"
	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/voice"
)

// VoiceHandler answers the Twilio webhook and consumes the media stream it
// requests. Each websocket connection gets its own transcription session;
// finalized transcripts flow into the shared pipeline.
type VoiceHandler struct {
	cfg      config.VoiceConfig
	pipeline *voice.TranscriptPipeline
	log      *logger.Logger
	upgrader websocket.Upgrader

	// realtimeURL is swappable so tests can point the session at a fake.
	realtimeURL string
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(cfg config.VoiceConfig, pipeline *voice.TranscriptPipeline, log *logger.Logger) *VoiceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &VoiceHandler{
		cfg:      cfg,
		pipeline: pipeline,
		log:      log.WithComponent("voice"),
		upgrader: websocket.Upgrader{
			// Twilio's media stream client is not a browser.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		realtimeURL: voice.DefaultRealtimeURL,
	}
}

// Answer handles POST /voice: reply with TwiML that forks a media stream to
// this server and bridges the call.
func (h *VoiceHandler) Answer(c *gin.Context) {
	streamURL := fmt.Sprintf("%s://%s/stream", h.cfg.StreamScheme, c.Request.Host)

	body, err := voice.AnswerTwiML(streamURL, h.cfg.DialNumber, h.cfg.CallerID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to build call instructions", err)
		return
	}

	h.log.Info("call answered", map[string]interface{}{"stream_url": streamURL})
	c.Data(http.StatusOK, "application/xml", body)
}

// Stream handles GET /stream, the websocket Twilio connects back to with
// base64 mu-law audio frames.
func (h *VoiceHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	transcriber := voice.NewTranscriber(voice.TranscriberConfig{
		APIKey:     h.cfg.AssemblyAIKey,
		SampleRate: h.cfg.SampleRate,
		BaseURL:    h.realtimeURL,
	}, h.pipeline.Submit, h.log)

	if err := transcriber.Start(c.Request.Context()); err != nil {
		h.log.Error("transcription session failed", err, nil)
		return
	}
	defer transcriber.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			h.log.Debug("media stream closed", map[string]interface{}{"error": err.Error()})
			return
		}

		var msg voice.StreamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn("unreadable stream message", map[string]interface{}{"error": err.Error()})
			continue
		}

		switch msg.Event {
		case voice.EventStart:
			sid := msg.StreamSID
			if msg.Start != nil {
				sid = msg.Start.StreamSID
			}
			h.log.Info("media stream started", map[string]interface{}{"stream_sid": sid})
		case voice.EventMedia:
			if msg.Media == nil {
				continue
			}
			audio, err := msg.Media.Audio()
			if err != nil {
				h.log.Warn("bad media frame", map[string]interface{}{"error": err.Error()})
				continue
			}
			transcriber.Stream(audio)
		case voice.EventStop:
			h.log.Info("media stream stopped", nil)
			return
		case voice.EventMark:
			h.log.Debug("mark received", nil)
		}
	}
}

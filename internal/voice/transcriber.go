package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/proptalk/proptalk/internal/logger"
)

// DefaultRealtimeURL is the AssemblyAI v3 streaming endpoint.
const DefaultRealtimeURL = "wss://streaming.assemblyai.com/v3/ws"

// chunkSize groups Twilio's 20 ms frames into 60 ms sends. At 8 kHz mu-law
// that is 480 bytes; AssemblyAI rejects chunks under 50 ms.
const chunkSize = 480

// closeWait bounds how long Close waits for the session to acknowledge the
// Terminate message before dropping the connection.
const closeWait = 2 * time.Second

// AssemblyAI session message types.
const (
	msgBegin       = "Begin"
	msgTurn        = "Turn"
	msgTermination = "Termination"
)

type realtimeMessage struct {
	Type                 string  `json:"type"`
	ID                   string  `json:"id,omitempty"`
	Transcript           string  `json:"transcript,omitempty"`
	EndOfTurn            bool    `json:"end_of_turn,omitempty"`
	TurnIsFormatted      bool    `json:"turn_is_formatted,omitempty"`
	AudioDurationSeconds float64 `json:"audio_duration_seconds,omitempty"`
	Error                string  `json:"error,omitempty"`
}

// TranscriptHandler receives each finalized turn transcript.
type TranscriptHandler func(transcript string)

// TranscriberConfig carries the session parameters.
type TranscriberConfig struct {
	APIKey     string
	SampleRate int
	// BaseURL overrides the AssemblyAI endpoint, for tests.
	BaseURL string
}

// Transcriber is a realtime speech-to-text session. Audio goes in through
// Stream, finalized turns come out through the handler. Stream must be
// called from a single goroutine; Close may be called from any.
type Transcriber struct {
	cfg     TranscriberConfig
	onFinal TranscriptHandler
	log     *logger.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex
	buffer  []byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewTranscriber prepares a session. Start must be called before Stream.
func NewTranscriber(cfg TranscriberConfig, onFinal TranscriptHandler, log *logger.Logger) *Transcriber {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultRealtimeURL
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 8000
	}
	return &Transcriber{
		cfg:     cfg,
		onFinal: onFinal,
		log:     log.WithComponent("transcriber"),
		done:    make(chan struct{}),
	}
}

// Start opens the websocket session and begins reading events. The turn
// detection thresholds are tuned for phone speech: wait out longer pauses so
// turns arrive as complete sentences rather than fragments.
func (t *Transcriber) Start(ctx context.Context) error {
	q := url.Values{}
	q.Set("sample_rate", strconv.Itoa(t.cfg.SampleRate))
	q.Set("encoding", "pcm_mulaw")
	q.Set("format_turns", "true")
	q.Set("min_end_of_turn_silence_when_confident", "1500")
	q.Set("max_turn_silence", "3000")
	q.Set("end_of_turn_confidence_threshold", "0.8")

	header := http.Header{}
	header.Set("Authorization", t.cfg.APIKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, t.cfg.BaseURL+"?"+q.Encode(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connect transcription session: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connect transcription session: %w", err)
	}
	t.conn = conn

	go t.readLoop()
	return nil
}

// Stream buffers raw mu-law audio and forwards it in chunkSize pieces.
func (t *Transcriber) Stream(audio []byte) {
	if t.conn == nil {
		return
	}

	t.buffer = append(t.buffer, audio...)
	for len(t.buffer) >= chunkSize {
		chunk := t.buffer[:chunkSize]
		t.buffer = t.buffer[chunkSize:]

		t.writeMu.Lock()
		err := t.conn.WriteMessage(websocket.BinaryMessage, chunk)
		t.writeMu.Unlock()
		if err != nil {
			t.log.Warn("audio send failed", map[string]interface{}{"error": err.Error()})
			return
		}
	}
}

// Close terminates the session and waits briefly for the server to confirm.
func (t *Transcriber) Close() {
	t.closeOnce.Do(func() {
		if t.conn == nil {
			close(t.done)
			return
		}

		t.writeMu.Lock()
		err := t.conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "Terminate"}`))
		t.writeMu.Unlock()
		if err != nil {
			t.log.Warn("terminate send failed", map[string]interface{}{"error": err.Error()})
		}

		select {
		case <-t.done:
		case <-time.After(closeWait):
		}
		t.conn.Close()
	})
}

func (t *Transcriber) readLoop() {
	defer close(t.done)

	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.log.Warn("session read ended", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		var msg realtimeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.log.Warn("unreadable session message", map[string]interface{}{"error": err.Error()})
			continue
		}

		switch msg.Type {
		case msgBegin:
			t.log.Info("transcription session opened", map[string]interface{}{"session_id": msg.ID})
		case msgTurn:
			if msg.Transcript == "" {
				continue
			}
			if !msg.EndOfTurn {
				t.log.Debug("partial transcript", map[string]interface{}{"transcript": msg.Transcript})
				continue
			}
			t.log.Info("final transcript", map[string]interface{}{"transcript": msg.Transcript})
			if t.onFinal != nil {
				t.onFinal(msg.Transcript)
			}
		case msgTermination:
			t.log.Info("transcription session closed", map[string]interface{}{
				"audio_seconds": msg.AudioDurationSeconds,
			})
			return
		default:
			if msg.Error != "" {
				t.log.Warn("transcription error", map[string]interface{}{"error": msg.Error})
			}
		}
	}
}

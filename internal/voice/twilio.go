package voice

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
)

// Twilio media stream event names.
const (
	EventStart = "start"
	EventMedia = "media"
	EventStop  = "stop"
	EventMark  = "mark"
)

// StreamMessage is one frame of a Twilio media stream websocket. Only the
// section matching Event is populated.
type StreamMessage struct {
	Event          string       `json:"event"`
	SequenceNumber string       `json:"sequenceNumber,omitempty"`
	StreamSID      string       `json:"streamSid,omitempty"`
	Start          *StreamStart `json:"start,omitempty"`
	Media          *StreamMedia `json:"media,omitempty"`
	Mark           *StreamMark  `json:"mark,omitempty"`
}

// StreamStart describes the call the stream belongs to.
type StreamStart struct {
	StreamSID string   `json:"streamSid"`
	CallSID   string   `json:"callSid"`
	Tracks    []string `json:"tracks,omitempty"`
}

// StreamMedia carries one audio frame, base64 mu-law.
type StreamMedia struct {
	Track     string `json:"track,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

// StreamMark is a custom marker echoed back by Twilio.
type StreamMark struct {
	Name string `json:"name"`
}

// Audio decodes the frame payload into raw mu-law bytes.
func (m *StreamMedia) Audio() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode media payload: %w", err)
	}
	return data, nil
}

type twimlResponse struct {
	XMLName xml.Name    `xml:"Response"`
	Start   *twimlStart `xml:"Start,omitempty"`
	Say     string      `xml:"Say,omitempty"`
	Dial    *twimlDial  `xml:"Dial,omitempty"`
}

type twimlStart struct {
	Stream twimlStream `xml:"Stream"`
}

type twimlStream struct {
	URL   string `xml:"url,attr"`
	Track string `xml:"track,attr"`
}

type twimlDial struct {
	CallerID string `xml:"callerId,attr,omitempty"`
	Number   string `xml:",chardata"`
}

// AnswerTwiML renders the webhook reply for an inbound call: fork the caller
// side of the audio to streamURL, acknowledge, then bridge to dialNumber.
// The stream runs on the outbound track so only the operator's voice is
// transcribed, not the bridged party.
func AnswerTwiML(streamURL, dialNumber, callerID string) ([]byte, error) {
	doc := twimlResponse{
		Start: &twimlStart{Stream: twimlStream{URL: streamURL, Track: "outbound_track"}},
		Say:   "Connecting you now.",
		Dial:  &twimlDial{CallerID: callerID, Number: dialNumber},
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

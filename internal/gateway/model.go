package gateway

import "encoding/json"

type MessageType string

const (
	// Client to server.
	MessageTypeFrame            MessageType = "frame"
	MessageTypeControl          MessageType = "control"
	MessageTypeTranscript       MessageType = "transcript"
	MessageTypeRecognitionEnded MessageType = "recognition_ended"
	MessageTypeRecognitionError MessageType = "recognition_error"

	// Server to client.
	MessageTypeAlerts           MessageType = "alerts"
	MessageTypeSpeak            MessageType = "speak"
	MessageTypeVibrate          MessageType = "vibrate"
	MessageTypeRecognitionStart MessageType = "recognition_start"
	MessageTypeRecognitionStop  MessageType = "recognition_stop"
	MessageTypeStatus           MessageType = "status"
	MessageTypeStatusClear      MessageType = "status_clear"
	MessageTypeError            MessageType = "error"
)

type StreamMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ControlAction string

const (
	ControlStartCamera    ControlAction = "start_camera"
	ControlStopCamera     ControlAction = "stop_camera"
	ControlToggleAudio    ControlAction = "toggle_audio"
	ControlToggleHaptics  ControlAction = "toggle_haptics"
	ControlToggleSidewalk ControlAction = "toggle_sidewalk"
	ControlEnableVoice    ControlAction = "enable_voice"
	ControlDisableVoice   ControlAction = "disable_voice"
)

type FramePayload struct {
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type ControlPayload struct {
	Action ControlAction `json:"action"`
}

type TranscriptPayload struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Final      bool    `json:"final"`
}

type RecognitionErrorPayload struct {
	Code string `json:"code"`
}

type SpeakPayload struct {
	Text string `json:"text"`
}

type VibratePayload struct {
	Pattern []int `json:"pattern"`
}

type StatusPayload struct {
	Text string `json:"text"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewMessage(msgType MessageType, payload any) (*StreamMessage, error) {
	if payload == nil {
		return &StreamMessage{Type: msgType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &StreamMessage{Type: msgType, Payload: data}, nil
}

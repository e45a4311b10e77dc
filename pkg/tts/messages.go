// ABOUTME: Cartesia request and response message types
// ABOUTME: Shared by the HTTP and WebSocket transports
package tts

// OutputFormat describes the audio the API should return
type OutputFormat struct {
	Container  string `json:"container"`
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
}

// Voice selects a voice by id
type Voice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

// Request is a synthesis request
type Request struct {
	OutputFormat OutputFormat `json:"output_format"`
	Language     string       `json:"language"`
	Voice        Voice        `json:"voice"`
	ModelID      string       `json:"model_id"`
	Transcript   string       `json:"transcript"`

	// WebSocket only
	ContextID string `json:"context_id,omitempty"`
	Continue  *bool  `json:"continue,omitempty"`
}

// Response is one WebSocket message from the API
type Response struct {
	Type       string `json:"type"`
	Data       string `json:"data,omitempty"`
	Done       bool   `json:"done"`
	StatusCode int    `json:"status_code,omitempty"`
	ContextID  string `json:"context_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// WebSocket response types
const (
	ResponseChunk = "chunk"
	ResponseDone  = "done"
	ResponseError = "error"
)

func (c *Client) newRequest(text string) Request {
	return Request{
		OutputFormat: OutputFormat{
			Container:  "raw",
			SampleRate: c.config.Format.SampleRate,
			Encoding:   string(c.config.Format.Encoding),
		},
		Language:   c.config.Language,
		Voice:      Voice{Mode: "id", ID: c.config.VoiceID},
		ModelID:    c.config.ModelID,
		Transcript: text,
	}
}

// Package response defines the JSON envelope every API answer is wrapped in.
// The server builds it with Success and Error; clients read it back with Decode.
package response

import (
	"encoding/json"
	"fmt"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error carries message as the user-facing reason.
func Error(statusCode int, message string) Response {
	return Response{
		Status:     StatusError,
		StatusCode: statusCode,
		Error:      message,
	}
}

// Envelope is the receiving side of Response, with data left undecoded.
type Envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	// Message is what bare error bodies (e.g. from a proxy) use instead of Error.
	Message string `json:"message"`
}

// Reason returns the error text of the envelope, if any.
func (e Envelope) Reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Decode unwraps raw and decodes its data into out. A missing or null data
// leaves out untouched.
func Decode(raw []byte, out interface{}) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

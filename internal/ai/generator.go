package ai

import "context"

// Task identifies the kind of generation being requested.
type Task string

const (
	TaskInitialPlan Task = "initial_plan"
	TaskAdaptPlan   Task = "adapt_plan"
	TaskVoiceMood   Task = "voice_mood"
	TaskFaceMood    Task = "face_mood"
)

// Attachment is an optional binary blob sent alongside the prompt.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// GenerateRequest holds the parameters for one generation call.
type GenerateRequest struct {
	Task       Task
	Prompt     string
	Attachment *Attachment
}

// GenerateResponse is the raw, unstructured reply.
type GenerateResponse struct {
	Text  string
	Model string
}

// Generator is the generative-AI text service. Implementations return
// *WithheldError when the provider's safety layer blocks the reply, and
// ErrTimeout when their deadline elapses.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

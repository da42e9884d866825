package agents

import (
	"math"
	"strings"

	"github.com/dalemusser/voicedesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/domain/models"
)

const (
	msgNoStartingMessages = "At least one starting message is required."
	msgBadDefaultIndex    = "Invalid default starting message index."
)

// agentInput is the body of POST /agents and PUT /agents/{id}.
type agentInput struct {
	AgentName   string `json:"agentName" validate:"notblank,max=200" label:"Agent name"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	Category    string `json:"category"`
	Personality string `json:"personality"`
	Language    string `json:"language"`

	SystemPrompt string `json:"systemPrompt"`

	STTSelection   string `json:"sttSelection"`
	TTSSelection   string `json:"ttsSelection"`
	LLMSelection   string `json:"llmSelection"`
	VoiceSelection string `json:"voiceSelection"`
	ContextMemory  string `json:"contextMemory"`
	BrandInfo      string `json:"brandInfo"`

	StartingMessages            []models.StartingMessage `json:"startingMessages"`
	DefaultStartingMessageIndex any                      `json:"defaultStartingMessageIndex"`

	AccountSID      string                `json:"accountSid"`
	ServiceProvider string                `json:"serviceProvider"`
	TaskDIDNumber   string                `json:"taskDidNumber"`
	CallerID        string                `json:"callerId"`
	XAPIKey         string                `json:"X_API_KEY"`
	AudioFile       string                `json:"audioFile"`
	AudioMetadata   *models.AudioMetadata `json:"audioMetadata"`
}

func (in *agentInput) normalize() {
	in.AgentName = htmlsanitize.Clean(in.AgentName)
	in.Description = htmlsanitize.Clean(in.Description)
	in.Category = normalize.Name(in.Category)
	in.Personality = normalize.Enum(in.Personality)
	in.STTSelection = normalize.Enum(in.STTSelection)
	in.TTSSelection = normalize.Enum(in.TTSSelection)
	in.LLMSelection = normalize.Enum(in.LLMSelection)
	in.VoiceSelection = normalize.Enum(in.VoiceSelection)
	in.ServiceProvider = normalize.Enum(in.ServiceProvider)
}

// defaultIndex checks the starting messages and returns the selected index.
// The index must be a JSON number naming an existing message.
func (in agentInput) defaultIndex() (int, string) {
	if len(in.StartingMessages) == 0 {
		return 0, msgNoStartingMessages
	}
	f, ok := in.DefaultStartingMessageIndex.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f >= float64(len(in.StartingMessages)) {
		return 0, msgBadDefaultIndex
	}
	return int(f), ""
}

// enumError returns a message for the first enum field outside its set.
// Empty values are filled with defaults later.
func (in agentInput) enumError() string {
	checks := []struct {
		label   string
		value   string
		allowed []string
	}{
		{"Personality", in.Personality, models.Personalities},
		{"STT selection", in.STTSelection, models.STTProviders},
		{"TTS selection", in.TTSSelection, models.TTSProviders},
		{"LLM selection", in.LLMSelection, models.LLMProviders},
		{"Voice selection", in.VoiceSelection, models.Voices},
		{"Service provider", in.ServiceProvider, models.ServiceProviders},
	}
	for _, c := range checks {
		if c.value != "" && !models.Contains(c.allowed, c.value) {
			return c.label + " must be one of: " + strings.Join(c.allowed, ", ") + "."
		}
	}
	return ""
}

// apply copies the input onto a, taking firstMessage and the audio clip
// from the selected starting message.
func (in agentInput) apply(a *models.Agent, idx int) {
	a.AgentName = in.AgentName
	a.Description = in.Description
	a.Category = in.Category
	a.Personality = in.Personality
	a.Language = in.Language
	a.SystemPrompt = in.SystemPrompt
	a.STTSelection = in.STTSelection
	a.TTSSelection = in.TTSSelection
	a.LLMSelection = in.LLMSelection
	a.VoiceSelection = in.VoiceSelection
	a.ContextMemory = in.ContextMemory
	a.BrandInfo = in.BrandInfo
	a.AccountSID = in.AccountSID
	a.ServiceProvider = in.ServiceProvider
	a.TaskDIDNumber = in.TaskDIDNumber
	a.CallerID = in.CallerID
	a.XAPIKey = in.XAPIKey
	a.AudioFile = in.AudioFile
	if in.AudioMetadata != nil {
		a.AudioMetadata = in.AudioMetadata
	}

	a.StartingMessages = in.StartingMessages
	sel := in.StartingMessages[idx]
	a.FirstMessage = sel.Text
	a.AudioBytes = ""
	if sel.AudioBase64 != nil {
		a.AudioBytes = *sel.AudioBase64
	}
	if a.AudioBytes == "" {
		a.AudioMetadata = nil
	}
}

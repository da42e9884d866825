// internal/domain/models/agent.go
package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Personality values.
var Personalities = []string{"formal", "informal", "friendly", "flirty", "disciplined"}

// Speech-to-text providers.
var STTProviders = []string{"deepgram", "whisper", "google", "azure", "aws"}

// Text-to-speech providers.
var TTSProviders = []string{"sarvam", "elevenlabs", "openai", "google", "azure", "aws"}

// Language model providers.
var LLMProviders = []string{"openai", "anthropic", "google", "azure"}

// Voices selectable for an agent.
var Voices = []string{
	"default", "male-professional", "female-professional", "male-friendly",
	"female-friendly", "neutral", "abhilash", "anushka", "meera", "pavithra",
	"maitreyi", "arvind", "amol", "amartya", "diya", "neel", "misha", "vian",
	"arjun", "maya", "manisha", "vidya", "arya", "karun", "hitesh",
}

// Telephony providers.
var ServiceProviders = []string{"twilio", "vonage", "plivo", "bandwidth", "other"}

// Agent field defaults applied by ApplyDefaults.
const (
	DefaultPersonality   = "formal"
	DefaultSTT           = "deepgram"
	DefaultTTS           = "sarvam"
	DefaultLLM           = "openai"
	DefaultVoice         = "default"
	DefaultAudioFormat   = "mp3"
	DefaultSampleRate    = 22050
	DefaultAudioChannels = 1
	DefaultAudioLanguage = "en"
	DefaultAudioProvider = "sarvam"
)

// StartingMessage is one opening line an agent may speak, with optional
// pre-rendered audio.
type StartingMessage struct {
	Text        string  `bson:"text" json:"text"`
	AudioBase64 *string `bson:"audio_base64" json:"audioBase64"`
}

// AudioMetadata describes the agent's stored audio clip.
type AudioMetadata struct {
	Format      string     `bson:"format" json:"format"`
	SampleRate  int        `bson:"sample_rate" json:"sampleRate"`
	Channels    int        `bson:"channels" json:"channels"`
	Size        int64      `bson:"size" json:"size"`
	GeneratedAt *time.Time `bson:"generated_at,omitempty" json:"generatedAt,omitempty"`
	Language    string     `bson:"language" json:"language"`
	Speaker     string     `bson:"speaker,omitempty" json:"speaker,omitempty"`
	Provider    string     `bson:"provider" json:"provider"`
}

// Agent is an AI voice agent configured by a client.
type Agent struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	ClientID primitive.ObjectID `bson:"client_id" json:"clientId"`

	AgentName    string `bson:"agent_name" json:"agentName"`
	Description  string `bson:"description" json:"description"`
	Category     string `bson:"category,omitempty" json:"category,omitempty"`
	Personality  string `bson:"personality" json:"personality"`
	Language     string `bson:"language,omitempty" json:"language,omitempty"`
	FirstMessage string `bson:"first_message" json:"firstMessage"`
	SystemPrompt string `bson:"system_prompt" json:"systemPrompt"`

	STTSelection   string `bson:"stt_selection" json:"sttSelection"`
	TTSSelection   string `bson:"tts_selection" json:"ttsSelection"`
	LLMSelection   string `bson:"llm_selection" json:"llmSelection"`
	VoiceSelection string `bson:"voice_selection" json:"voiceSelection"`
	ContextMemory  string `bson:"context_memory,omitempty" json:"contextMemory,omitempty"`
	BrandInfo      string `bson:"brand_info,omitempty" json:"brandInfo,omitempty"`

	StartingMessages []StartingMessage `bson:"starting_messages" json:"startingMessages"`

	AccountSID      string `bson:"account_sid,omitempty" json:"accountSid,omitempty"`
	ServiceProvider string `bson:"service_provider,omitempty" json:"serviceProvider,omitempty"`
	TaskDIDNumber   string `bson:"task_did_number,omitempty" json:"taskDidNumber,omitempty"`
	CallerID        string `bson:"caller_id,omitempty" json:"callerId,omitempty"`
	XAPIKey         string `bson:"x_api_key,omitempty" json:"X_API_KEY,omitempty"`

	AudioFile     string         `bson:"audio_file,omitempty" json:"audioFile,omitempty"`
	AudioBytes    string         `bson:"audio_bytes,omitempty" json:"-"`
	AudioMetadata *AudioMetadata `bson:"audio_metadata,omitempty" json:"audioMetadata,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ApplyDefaults fills empty enum fields and derives audio metadata. When the
// agent carries audio, the metadata size is recomputed from the base64 length.
func (a *Agent) ApplyDefaults() {
	if a.Personality == "" {
		a.Personality = DefaultPersonality
	}
	if a.STTSelection == "" {
		a.STTSelection = DefaultSTT
	}
	if a.TTSSelection == "" {
		a.TTSSelection = DefaultTTS
	}
	if a.LLMSelection == "" {
		a.LLMSelection = DefaultLLM
	}
	if a.VoiceSelection == "" {
		a.VoiceSelection = DefaultVoice
	}
	if a.AudioBytes == "" {
		return
	}
	if a.AudioMetadata == nil {
		a.AudioMetadata = &AudioMetadata{}
	}
	m := a.AudioMetadata
	if m.Format == "" {
		m.Format = DefaultAudioFormat
	}
	if m.SampleRate == 0 {
		m.SampleRate = DefaultSampleRate
	}
	if m.Channels == 0 {
		m.Channels = DefaultAudioChannels
	}
	if m.Language == "" {
		m.Language = DefaultAudioLanguage
	}
	if m.Provider == "" {
		m.Provider = DefaultAudioProvider
	}
	m.Size = AudioSize(a.AudioBytes)
}

// AudioSize approximates the decoded byte size of a base64 payload.
func AudioSize(b64 string) int64 {
	return int64(math.Ceil(float64(len(b64)) * 3 / 4))
}

// Contains reports whether v is one of allowed.
func Contains(allowed []string, v string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

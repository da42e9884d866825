// internal/domain/models/apikey.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider describes a third-party service a client can store a key for.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"` // llm | tts | stt | telephony
	KeyPrefix   string `json:"-"`
	MinKeyLen   int    `json:"-"`
	Description string `json:"description"`
}

// Providers is the catalogue returned by GET /providers.
var Providers = []Provider{
	{ID: "openai", Name: "OpenAI", Category: "llm", KeyPrefix: "sk-", MinKeyLen: 20, Description: "GPT models"},
	{ID: "anthropic", Name: "Anthropic", Category: "llm", KeyPrefix: "sk-ant-", MinKeyLen: 20, Description: "Claude models"},
	{ID: "google", Name: "Google", Category: "llm", MinKeyLen: 20, Description: "Gemini and Cloud speech"},
	{ID: "azure", Name: "Azure", Category: "llm", MinKeyLen: 16, Description: "Azure OpenAI and speech"},
	{ID: "sarvam", Name: "Sarvam AI", Category: "tts", MinKeyLen: 16, Description: "Indic text-to-speech"},
	{ID: "elevenlabs", Name: "ElevenLabs", Category: "tts", MinKeyLen: 16, Description: "Voice synthesis"},
	{ID: "deepgram", Name: "Deepgram", Category: "stt", MinKeyLen: 16, Description: "Speech recognition"},
	{ID: "twilio", Name: "Twilio", Category: "telephony", MinKeyLen: 16, Description: "Voice calls"},
	{ID: "plivo", Name: "Plivo", Category: "telephony", MinKeyLen: 16, Description: "Voice calls"},
}

// LookupProvider returns the provider with the given id.
func LookupProvider(id string) (Provider, bool) {
	for _, p := range Providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// ClientAPIKey is a client's sealed credential for one provider.
type ClientAPIKey struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	ClientID      primitive.ObjectID `bson:"client_id" json:"clientId"`
	Provider      string             `bson:"provider" json:"provider"`
	SealedKey     []byte             `bson:"sealed_key" json:"-"`
	KeyHint       string             `bson:"key_hint" json:"keyHint"`
	Configuration map[string]any     `bson:"configuration,omitempty" json:"configuration,omitempty"`
	LastTestedAt  *time.Time         `bson:"last_tested_at,omitempty" json:"lastTestedAt,omitempty"`
	LastTestOK    *bool              `bson:"last_test_ok,omitempty" json:"lastTestOk,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

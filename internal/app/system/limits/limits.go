// internal/app/system/limits/limits.go
package limits

// Size caps for request and upstream response bodies.
const (
	// MinRequestBody is the smallest max_request_body_bytes that still
	// admits a contact CSV or an agent with recorded audio.
	MinRequestBody = 10 << 20 // 10 MB

	// MaxBotPayload caps the JSON forwarded to the bot service.
	MaxBotPayload = 1 << 20 // 1 MB

	// MaxBotResponse caps what is read back from the bot service.
	MaxBotResponse = 8 << 20 // 8 MB

	// MaxTTSResponse caps a synthesis response. Audio arrives base64 encoded.
	MaxTTSResponse = 32 << 20 // 32 MB
)

package testutil

import "context"

// Presigner returns deterministic URLs for object keys.
type Presigner struct{}

func (Presigner) PresignGet(_ context.Context, key string) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (Presigner) PresignPut(_ context.Context, key, contentType string) (string, error) {
	return "https://files.test/put/" + key + "?type=" + contentType, nil
}

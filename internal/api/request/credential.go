package request

// StoreCredentialRequest represents the request body for storing a source
// credential. Which fields apply depends on the source: the broker uses
// apiKey and optionally apiKeyId, the exchange uses apiKey and apiSecret.
type StoreCredentialRequest struct {
	APIKey    string `json:"apiKey"`
	APIKeyID  string `json:"apiKeyId,omitempty"`
	APISecret string `json:"apiSecret,omitempty"`
}

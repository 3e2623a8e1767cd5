package models

// Credentials holds a Nostr signing identity and its optional profile
// metadata. PrivateKey may be 64-char hex or a bech32 nsec string; both
// encode the same 32-byte secret.
type Credentials struct {
	PrivateKey  string `json:"private_key"`
	PublicKey   string `json:"public_key"`
	DisplayName string `json:"display_name,omitempty"`
	About       string `json:"about,omitempty"`
	Picture     string `json:"picture,omitempty"`
	NIP05       string `json:"nip05,omitempty"`
}

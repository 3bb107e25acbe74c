package sheets

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CredsEnvVar holds the base64-encoded service-account key JSON. The
// secret is provisioned out-of-band; decoding it here replaces the old
// decode-to-key-file step, so the key never has to touch disk.
const CredsEnvVar = "BOOKTRACK_CREDS_B64"

const defaultTokenURI = "https://oauth2.googleapis.com/token"

// Credentials is the subset of a Google service-account key file the
// client needs.
type Credentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"` // PEM-encoded RSA key
	TokenURI    string `json:"token_uri,omitempty"`
}

// LoadCredentials resolves credentials with the following precedence:
// the CredsEnvVar environment variable (base64 key JSON), then an
// explicit key file path. Returns ErrMissingCredential when neither is
// provided.
func LoadCredentials(keyFile string) (Credentials, error) {
	if encoded := strings.TrimSpace(os.Getenv(CredsEnvVar)); encoded != "" {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return Credentials{}, fmt.Errorf("decoding %s: %w", CredsEnvVar, err)
		}

		return parseCredentials(raw)
	}

	if keyFile != "" {
		raw, err := os.ReadFile(keyFile)
		if err != nil {
			return Credentials{}, fmt.Errorf("reading credentials file %s: %w", keyFile, err)
		}

		return parseCredentials(raw)
	}

	return Credentials{}, ErrMissingCredential
}

func parseCredentials(raw []byte) (Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parsing service account key: %w", err)
	}

	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return Credentials{}, fmt.Errorf("%w: key JSON lacks client_email or private_key", ErrMissingCredential)
	}

	if creds.TokenURI == "" {
		creds.TokenURI = defaultTokenURI
	}

	return creds, nil
}

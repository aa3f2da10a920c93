package gcp

import (
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ClientOptions turns the configured credentials (inline JSON or a file path)
// into client options. Empty means application default credentials.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// IsNotFound reports a 404 from a Google API.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 404
}

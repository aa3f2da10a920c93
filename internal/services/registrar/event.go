package registrar

import (
	"encoding/json"
	"fmt"
	"net/url"

	"print-pricing/internal/artifact"
)

// objectEvent covers a GCS object notification and an S3 event record.
type objectEvent struct {
	Bucket  string `json:"bucket"`
	Name    string `json:"name"`
	Key     string `json:"key"`
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseEvent extracts the artifact location from a storage notification:
// {"bucket","name"} (GCS), {"bucket","key"}, or Records[0].s3 (S3, URL-encoded key).
func ParseEvent(body []byte) (artifact.Location, error) {
	var ev objectEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return artifact.Location{}, fmt.Errorf("decode storage event: %w", err)
	}
	if len(ev.Records) > 0 {
		s3 := ev.Records[0].S3
		key, err := url.QueryUnescape(s3.Object.Key)
		if err != nil {
			return artifact.Location{}, fmt.Errorf("decode object key %q: %w", s3.Object.Key, err)
		}
		if key == "" {
			return artifact.Location{}, fmt.Errorf("storage event has no object key")
		}
		return artifact.Location{Bucket: s3.Bucket.Name, Key: key}, nil
	}
	key := ev.Name
	if key == "" {
		key = ev.Key
	}
	if key == "" {
		return artifact.Location{}, fmt.Errorf("storage event has no object name")
	}
	return artifact.Location{Bucket: ev.Bucket, Key: key}, nil
}

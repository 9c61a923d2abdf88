// Package encoding writes and reads API payloads as JSON or CBOR, chosen
// from the request's Accept header.
package encoding

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"

	constants "pimonitor/config"
)

var encMode = func() cbor.EncMode {
	// Struct fields keep declaration order, matching the JSON key order
	em, err := cbor.EncOptions{Sort: cbor.SortNone}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("invalid cbor encoding options: %v", err))
	}
	return em
}()

// MarshalCBOR encodes data to CBOR format
func MarshalCBOR(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// UnmarshalCBOR decodes CBOR data
func UnmarshalCBOR(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

// Negotiate picks CBOR when the Accept header lists it, JSON otherwise
func Negotiate(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == constants.CONTENT_TYPE_CBOR {
			return constants.CONTENT_TYPE_CBOR
		}
	}
	return constants.CONTENT_TYPE_JSON
}

// Marshal encodes v for contentType
func Marshal(contentType string, v interface{}) ([]byte, error) {
	if contentType == constants.CONTENT_TYPE_CBOR {
		return MarshalCBOR(v)
	}
	return json.Marshal(v)
}

// WriteResponse encodes v in the format the request accepts. Encoding
// happens before the header is written so a failure can still become a 500.
func WriteResponse(w http.ResponseWriter, r *http.Request, status int, v interface{}) error {
	contentType := Negotiate(r.Header.Get("Accept"))

	body, err := Marshal(contentType, v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return fmt.Errorf("failed to encode response: %w", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// ReadResponse decodes a response body according to its Content-Type
func ReadResponse(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == constants.CONTENT_TYPE_CBOR {
		return UnmarshalCBOR(body, v)
	}
	return json.Unmarshal(body, v)
}

package materialize

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/sigaihealth/vercelsourcerecover/pkg/client"
	"github.com/sigaihealth/vercelsourcerecover/pkg/protocol"
)

// decodeContent turns a content response into the bytes to write.
//
// An explicit base64 encoding header wins. A JSON object with a data key is
// unwrapped and its data decoded, and a JSON string is decoded only if it is
// strictly valid, canonical base64. Any other labelled body (text with or
// without a charset, binary) is written verbatim. Only an unlabelled body is
// guessed at, and that guess can still misfire on short plain text made only
// of base64 characters.
func decodeContent(c *client.Content) ([]byte, error) {
	body := c.Body
	trimmed := bytes.TrimSpace(body)

	if c.Encoding == "base64" {
		data, err := decodeBase64(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		return data, nil
	}

	if c.IsJSON() {
		return decodeJSON(body, trimmed)
	}
	if mediaType(c.ContentType) != "" {
		return body, nil
	}

	// Unlabelled JSON may just be a source file, so it is kept on failure.
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '"') {
		if data, err := decodeJSON(body, trimmed); err == nil {
			return data, nil
		}
		return body, nil
	}
	if data, ok := strictBase64(string(trimmed)); ok {
		return data, nil
	}
	return body, nil
}

// decodeJSON unwraps a JSON content payload. Bodies that are not a payload
// object or string are returned unchanged.
func decodeJSON(body, trimmed []byte) ([]byte, error) {
	if len(trimmed) == 0 {
		return body, nil
	}
	switch trimmed[0] {
	case '{':
		var payload protocol.FileContentResponse
		if json.Unmarshal(trimmed, &payload) != nil || payload.Data == nil {
			return body, nil
		}
		if payload.Encoding != "" && !strings.EqualFold(payload.Encoding, "base64") {
			return []byte(*payload.Data), nil
		}
		data, err := decodeBase64(*payload.Data)
		if err != nil {
			return nil, fmt.Errorf("decode data field: %w", err)
		}
		return data, nil
	case '"':
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return guessBase64(s), nil
		}
	}
	return body, nil
}

// mediaType returns the lowercased media type of a Content-Type header
// without its parameters.
func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// guessBase64 decodes s when it is strict base64 and returns it unchanged otherwise.
func guessBase64(s string) []byte {
	if data, ok := strictBase64(s); ok {
		return data
	}
	return []byte(s)
}

// strictBase64 accepts only padded standard base64 that re-encodes to the same text.
func strictBase64(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 4 || len(s)%4 != 0 {
		return nil, false
	}
	data, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, false
	}
	if base64.StdEncoding.EncodeToString(data) != s {
		return nil, false
	}
	return data, true
}

// decodeBase64 accepts the padded and unpadded standard and URL alphabets,
// ignoring embedded line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(s))
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

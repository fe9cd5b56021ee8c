package materialize

import (
	"encoding/base64"
	"testing"

	"github.com/sigaihealth/vercelsourcerecover/pkg/client"
)

func TestDecodeContent(t *testing.T) {
	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name    string
		content client.Content
		want    string
	}{
		{"json data field",
			client.Content{Body: []byte(`{"data":"` + b64("hello world") + `"}`), ContentType: "application/json"},
			"hello world"},
		{"json data field unpadded",
			client.Content{Body: []byte(`{"data":"aGk"}`), ContentType: "application/json"},
			"hi"},
		{"json data with non-base64 encoding",
			client.Content{Body: []byte(`{"data":"plain text","encoding":"utf-8"}`)},
			"plain text"},
		{"json object without data is raw",
			client.Content{Body: []byte(`{"name":"pkg","version":"1.0.0"}`), ContentType: "application/json"},
			`{"name":"pkg","version":"1.0.0"}`},
		{"json empty data is an empty file",
			client.Content{Body: []byte(`{"data":""}`), ContentType: "application/json"},
			""},
		{"json empty data with base64 encoding",
			client.Content{Body: []byte(`{"data":"","encoding":"base64"}`), ContentType: "application/json; charset=utf-8"},
			""},
		{"unlabelled json data that is not base64 keeps body",
			client.Content{Body: []byte(`{"data":"not base64!"}`)},
			`{"data":"not base64!"}`},
		{"json string base64",
			client.Content{Body: []byte(`"` + b64("body text") + `"`), ContentType: "application/json"},
			"body text"},
		{"json string plain",
			client.Content{Body: []byte(`"just words"`), ContentType: "application/json"},
			"just words"},
		{"explicit header",
			client.Content{Body: []byte(b64("from header")), Encoding: "base64"},
			"from header"},
		{"text source stays raw",
			client.Content{Body: []byte("const a = 1;\n"), ContentType: "text/plain"},
			"const a = 1;\n"},
		{"binary is never decoded",
			client.Content{Body: []byte("QUJD"), ContentType: "application/octet-stream"},
			"QUJD"},
		{"text/plain that looks like base64 stays raw",
			client.Content{Body: []byte("true\n"), ContentType: "text/plain; charset=utf-8"},
			"true\n"},
		{"text/plain commit hash stays raw",
			client.Content{Body: []byte("0123456789abcdef0123456789abcdef01234567"), ContentType: "text/plain"},
			"0123456789abcdef0123456789abcdef01234567"},
		{"typed text with charset stays raw",
			client.Content{Body: []byte("main"), ContentType: "application/javascript; charset=utf-8"},
			"main"},
		{"unlabelled base64 text",
			client.Content{Body: []byte(b64("decoded!"))},
			"decoded!"},
	}

	for _, tt := range tests {
		got, err := decodeContent(&tt.content)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeContent_BadExplicitBase64(t *testing.T) {
	_, err := decodeContent(&client.Content{Body: []byte("%%%"), Encoding: "base64"})
	if err == nil {
		t.Error("expected error for invalid base64 with explicit encoding")
	}
}

func TestDecodeContent_BadDataField(t *testing.T) {
	_, err := decodeContent(&client.Content{Body: []byte(`{"data":"not base64!"}`), ContentType: "application/json"})
	if err == nil {
		t.Error("expected error for a JSON payload whose data field is not base64")
	}
}

func TestStrictBase64(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"aGVsbG8=", true},
		{"aGVsbG8", false},
		{"hello", false},
		{"a b c d", false},
		{"", false},
	}
	for _, tt := range tests {
		if _, ok := strictBase64(tt.in); ok != tt.ok {
			t.Errorf("strictBase64(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

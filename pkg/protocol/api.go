// Package protocol defines the request/response types of the provider API.
package protocol

import (
	"encoding/json"

	"github.com/sigaihealth/vercelsourcerecover/pkg/models"
)

// TeamsResponse is returned by GET /api/v2/teams
type TeamsResponse struct {
	Teams []models.Team `json:"teams"`
}

// DeploymentsResponse is returned by GET /api/v6/deployments
type DeploymentsResponse struct {
	Deployments []models.Deployment `json:"deployments"`
}

// FilesResponse is the flat form of GET /api/v2/deployments/{uid}/files.
// The same endpoint may instead return a tree (array or single node).
type FilesResponse struct {
	Files []models.FlatFileEntry `json:"files"`
}

// FileContentResponse is the JSON form of GET /api/v8/deployments/{uid}/files/{id}.
// Data is nil when the body carries no data key; an empty file arrives as "".
type FileContentResponse struct {
	Data     *string `json:"data"`
	Encoding string  `json:"encoding,omitempty"`
}

// ErrorResponse is returned on API errors. Error is either a string or an
// object carrying code and message.
type ErrorResponse struct {
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ErrorDetail is the object form of ErrorResponse.Error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Text returns the most specific message carried by the error body.
func (r ErrorResponse) Text() string {
	if len(r.Error) > 0 {
		var s string
		if json.Unmarshal(r.Error, &s) == nil && s != "" {
			return s
		}
		var d ErrorDetail
		if json.Unmarshal(r.Error, &d) == nil {
			if d.Message != "" {
				return d.Message
			}
			if d.Code != "" {
				return d.Code
			}
		}
	}
	return r.Message
}

package client

import (
	"strings"
)

// NormalizeToken turns a raw access token into an Authorization header value.
// A value already prefixed with a bearer scheme and a space keeps its text and only has its
// first character upper-cased; anything else gets "bearer " prepended.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "bearer ") || strings.HasPrefix(token, "Bearer ") {
		return strings.ToUpper(token[:1]) + token[1:]
	}
	return "bearer " + token
}

// AppendTeamID scopes an API URL to a team. sep is "?" when the URL has no
// query yet and "&" otherwise. An empty teamID leaves the URL unchanged.
func AppendTeamID(rawURL, teamID, sep string) string {
	if teamID == "" {
		return rawURL
	}
	return rawURL + sep + "teamId=" + teamID
}

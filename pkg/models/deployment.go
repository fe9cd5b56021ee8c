package models

import "time"

// Team is an organizational scope on the hosting provider.
type Team struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Deployment is a single published version of a project.
type Deployment struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	State   string `json:"state,omitempty"`
	Created int64  `json:"created"`
}

// CreatedAt converts the millisecond creation timestamp.
func (d Deployment) CreatedAt() time.Time {
	return time.UnixMilli(d.Created)
}

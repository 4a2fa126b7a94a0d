package model

// Logo describes an uploaded logo image that logo overlays can reference.
type Logo struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

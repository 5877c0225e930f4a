package model

type Team struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

// TeamSummary is the search result shape: never carries the passcode.
type TeamSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

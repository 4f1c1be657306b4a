package jsonapi

// record is one listing entry as sent by the API. It never outlives a mapping step.
type record struct {
	Title         string  `json:"title"`
	ID            string  `json:"id"`
	Image         string  `json:"image"`
	EpisodeNumber *string `json:"episodenumber,omitempty"`
}

type listing struct {
	Results []record `json:"results"`
}

type episodeRecord struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

type info struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Image    string          `json:"image"`
	Episodes []episodeRecord `json:"episodes"`
}

package source

// FeaturedContainer holds the two listings shown on the landing screen.
type FeaturedContainer struct {
	Featured []AnimeLink `json:"featured"`
	Latest   []AnimeLink `json:"latest"`
}

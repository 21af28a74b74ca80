package clothes

import "time"

// ClothingItem is a row of the backend-owned "clothes" table. The client
// creates and reads items; it never updates or deletes them.
type ClothingItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Color     string    `json:"color,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Categories are the suggestions offered when adding an item. Free-form
// categories are accepted as well.
var Categories = []string{
	"koszulka", "spodnie", "bluza", "buty",
	"czapka", "kurtka", "sukienka", "spódnica",
}

package domain

// Product as exposed by the external product API.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageRef    string  `json:"image_ref"`
	Available   bool    `json:"available"`
}

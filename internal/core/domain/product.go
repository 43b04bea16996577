package domain

// Product is a catalog entry. Prices are in the store's single currency.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category,omitempty"`
}

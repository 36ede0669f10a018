package domain

// Catalog is the remote schema catalog document.
type Catalog struct {
	Schemas []CatalogSchema `json:"schemas"`
}

// CatalogSchema is one third-party schema descriptor from the catalog.
type CatalogSchema struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	URL         string   `json:"url" validate:"required,url"`
	FileMatch   []string `json:"fileMatch"`
}

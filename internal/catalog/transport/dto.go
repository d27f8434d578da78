package transport

// CommuneResponse describes a selectable commune.
type CommuneResponse struct {
	Name string `json:"name"`
	City string `json:"city"`
}

// CatalogResponse lists the reference data used by the client apps.
type CatalogResponse struct {
	Categories []string          `json:"categories"`
	Communes   []CommuneResponse `json:"communes"`
}

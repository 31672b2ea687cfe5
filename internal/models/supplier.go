package models

// SupplierType groups suppliers (catering, music, flowers...)
type SupplierType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Supplier is a vendor hired for the wedding
type Supplier struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	TypeID  *int64  `json:"type_id,omitempty"`
	Cost    float64 `json:"cost"`
	Contact string  `json:"contact,omitempty"`
	Notes   string  `json:"notes,omitempty"`
}

// ConfigurableText is an HTML snippet editable from the admin panel
type ConfigurableText struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

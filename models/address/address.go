package address

// Address is a postal address embedded into other models.
type Address struct {
	Street  string `gorm:"size:255" json:"street,omitempty"`
	City    string `gorm:"size:255" json:"city,omitempty"`
	State   string `gorm:"size:255" json:"state,omitempty"`
	ZipCode string `gorm:"size:20" json:"zip_code,omitempty"`
	Country string `gorm:"size:100" json:"country,omitempty"`
}

// IsEmpty reports whether no address field is set.
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.ZipCode == "" && a.Country == ""
}

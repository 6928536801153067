package document

import "strings"

// CompanyProfile identifies the issuer printed in the header.
type CompanyProfile struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Email   string `json:"email"`
}

var defaultCompany = CompanyProfile{
	Name:    "Empresa",
	TaxID:   "900.XXX.XXX-X",
	Address: "Dirección",
	Phone:   "XXX-XXXX",
	City:    "Ciudad",
	Email:   "ventas@empresa.com",
}

// DefaultCompany is the placeholder profile used when none is configured.
func DefaultCompany() CompanyProfile {
	return defaultCompany
}

// WithDefaults fills blank fields with the placeholder profile.
func (c CompanyProfile) WithDefaults() CompanyProfile {
	return CompanyProfile{
		Name:    orDefault(c.Name, defaultCompany.Name),
		TaxID:   orDefault(c.TaxID, defaultCompany.TaxID),
		Address: orDefault(c.Address, defaultCompany.Address),
		Phone:   orDefault(c.Phone, defaultCompany.Phone),
		City:    orDefault(c.City, defaultCompany.City),
		Email:   orDefault(c.Email, defaultCompany.Email),
	}
}

// Merge overlays the non-blank fields of override on c.
func (c CompanyProfile) Merge(override CompanyProfile) CompanyProfile {
	return CompanyProfile{
		Name:    orDefault(override.Name, c.Name),
		TaxID:   orDefault(override.TaxID, c.TaxID),
		Address: orDefault(override.Address, c.Address),
		Phone:   orDefault(override.Phone, c.Phone),
		City:    orDefault(override.City, c.City),
		Email:   orDefault(override.Email, c.Email),
	}
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

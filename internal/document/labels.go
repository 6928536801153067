package document

// Labels holds every fixed caption printed on the document.
type Labels struct {
	Title        string `json:"title"`
	Number       string `json:"number"`
	Date         string `json:"date"`
	TaxIDPrefix  string `json:"tax_id_prefix"`
	PhonePrefix  string `json:"phone_prefix"`
	Client       string `json:"client"`
	ClientTaxID  string `json:"client_tax_id"`
	Company      string `json:"company"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Location     string `json:"location"`
	Expiry       string `json:"expiry"`
	Reference    string `json:"reference"`
	Description  string `json:"description"`
	Quantity     string `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	LineTotal    string `json:"line_total"`
	Subtotal     string `json:"subtotal"`
	Discount     string `json:"discount"`
	Total        string `json:"total"`
	Terms        string `json:"terms"`
	NotAvailable string `json:"not_available"`
	FilePrefix   string `json:"file_prefix"`
}

func DefaultLabels() Labels {
	return Labels{
		Title:        "COTIZACIÓN",
		Number:       "No.",
		Date:         "Fecha:",
		TaxIDPrefix:  "NIT:",
		PhonePrefix:  "Tel:",
		Client:       "Cliente:",
		ClientTaxID:  "NIT/Cédula:",
		Company:      "Empresa:",
		Phone:        "Teléfono:",
		Email:        "Email:",
		Location:     "Ubicación:",
		Expiry:       "Vencimiento:",
		Reference:    "Referencia",
		Description:  "Descripción",
		Quantity:     "Cantidad",
		UnitPrice:    "Precio Unitario",
		LineTotal:    "Total",
		Subtotal:     "Subtotal:",
		Discount:     "Descuento:",
		Total:        "TOTAL:",
		Terms:        "Condiciones Generales:",
		NotAvailable: "N/A",
		FilePrefix:   "Cotizacion",
	}
}

// withDefaults replaces blank labels with the defaults.
func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Labels{
		Title:        pick(l.Title, d.Title),
		Number:       pick(l.Number, d.Number),
		Date:         pick(l.Date, d.Date),
		TaxIDPrefix:  pick(l.TaxIDPrefix, d.TaxIDPrefix),
		PhonePrefix:  pick(l.PhonePrefix, d.PhonePrefix),
		Client:       pick(l.Client, d.Client),
		ClientTaxID:  pick(l.ClientTaxID, d.ClientTaxID),
		Company:      pick(l.Company, d.Company),
		Phone:        pick(l.Phone, d.Phone),
		Email:        pick(l.Email, d.Email),
		Location:     pick(l.Location, d.Location),
		Expiry:       pick(l.Expiry, d.Expiry),
		Reference:    pick(l.Reference, d.Reference),
		Description:  pick(l.Description, d.Description),
		Quantity:     pick(l.Quantity, d.Quantity),
		UnitPrice:    pick(l.UnitPrice, d.UnitPrice),
		LineTotal:    pick(l.LineTotal, d.LineTotal),
		Subtotal:     pick(l.Subtotal, d.Subtotal),
		Discount:     pick(l.Discount, d.Discount),
		Total:        pick(l.Total, d.Total),
		Terms:        pick(l.Terms, d.Terms),
		NotAvailable: pick(l.NotAvailable, d.NotAvailable),
		FilePrefix:   pick(l.FilePrefix, d.FilePrefix),
	}
}

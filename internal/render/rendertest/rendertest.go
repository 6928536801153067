// Package rendertest provides fixed document models for renderer tests.
package rendertest

import "github.com/angelmondragon/quotecatalog/internal/document"

// SampleModel is a full quotation layout with a text badge.
func SampleModel() document.Model {
	return document.Model{
		Title:    "COTIZACIÓN COT-202401-123456",
		FileName: "Cotizacion_COT-202401-123456.pdf",
		Blocks: []document.Block{
			document.HeaderBlock{
				Company: []document.TextLine{
					{Text: "Maderas del Eje", Emphasis: true},
					{Text: "NIT: 900.123.456-7"},
					{Text: "Calle 10 # 5-20"},
					{Text: "Tel: 606-1234567"},
					{Text: "Manizales"},
					{Text: "ventas@maderas.co"},
				},
				Badge: document.TextBadge{Title: "COTIZACIÓN", Number: "No. COT-202401-123456", Date: "Fecha: 15/01/2024"},
			},
			document.KeyValueBlock{
				Name: "client",
				Groups: [][]document.Field{
					{
						{Label: "Cliente:", Value: "Ana Gómez"},
						{Label: "NIT/Cédula:", Value: "N/A"},
						{Label: "Empresa:", Value: "N/A"},
						{Label: "Teléfono:", Value: "3001234567"},
						{Label: "Email:", Value: "N/A"},
					},
					{
						{Label: "Ubicación:", Value: "Caldas"},
						{Label: "Vencimiento:", Value: "14/02/2024"},
					},
				},
				Weights: []float64{4, 2.5},
			},
			document.TableBlock{
				Name: "items",
				Columns: []document.Column{
					{Header: "Referencia", Weight: 1.5, Align: document.AlignCenter},
					{Header: "Descripción", Weight: 2.5, Align: document.AlignLeft},
					{Header: "Cantidad", Weight: 0.8, Align: document.AlignCenter},
					{Header: "Precio Unitario", Weight: 1.1, Align: document.AlignRight},
					{Header: "Total", Weight: 1.1, Align: document.AlignRight},
				},
				Rows: [][]string{
					{"TABPIN001", "Tabla pino 2x10 <cepillada> & seca", "2", "$ 50.000", "$ 100.000"},
					{"=LIS010", "Listón 1x2", "1", "$ 30.000", "$ 30.000"},
				},
			},
			document.TotalsBlock{Rows: []document.TotalRow{
				{Label: "Subtotal:", Value: "$ 130.000"},
				{Label: "Descuento:", Value: "10% - $ 13.000"},
				{Label: "TOTAL:", Value: "$ 117.000", Emphasis: true},
			}},
			document.TextListBlock{
				Name:  "terms",
				Title: "Condiciones Generales:",
				Items: []string{"Precios sujetos a cambio sin previo aviso.", "Forma de pago: contado."},
			},
			document.SignatureBlock{Parties: []string{"Firma Autorizada", "Aceptación Cliente"}},
		},
	}
}

// Package document turns a quotation into an ordered list of layout blocks
// that any renderer can draw. Blocks carry structure and layout hints only.
package document

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

type BlockKind string

const (
	KindHeader    BlockKind = "header"
	KindKeyValue  BlockKind = "key-value"
	KindTable     BlockKind = "table"
	KindTotals    BlockKind = "totals"
	KindTextList  BlockKind = "text-list"
	KindSignature BlockKind = "signature"
)

type Block interface {
	Kind() BlockKind
}

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TextLine is one line of free text; Emphasis asks the renderer to make it stand out.
type TextLine struct {
	Text     string `json:"text"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

// Image is an optional raster asset such as a company logo.
type Image struct {
	Name   string  `json:"name"`
	Format string  `json:"format"`
	Data   []byte  `json:"-"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Usable reports whether the image is a png or jpeg whose header decodes
// and matches its declared format. Anything else gets the text badge.
func (i *Image) Usable() bool {
	if i == nil || len(i.Data) == 0 {
		return false
	}
	declared := imageFormat(i.Format)
	if declared == "" {
		return false
	}
	_, detected, err := image.DecodeConfig(bytes.NewReader(i.Data))
	return err == nil && detected == declared
}

// imageFormat maps a declared format or extension to the image package's
// name for it. Unsupported formats map to "".
func imageFormat(format string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpeg"
	}
	return ""
}

type Badge interface {
	badge()
}

type ImageBadge struct {
	Image Image `json:"image"`
}

// TextBadge is drawn when no logo is available.
type TextBadge struct {
	Title  string `json:"title"`
	Number string `json:"number"`
	Date   string `json:"date"`
}

func (ImageBadge) badge() {}
func (TextBadge) badge()  {}

// Lines returns the badge text in display order.
func (b TextBadge) Lines() []string {
	return []string{b.Title, b.Number, b.Date}
}

type HeaderBlock struct {
	Company []TextLine `json:"company"`
	Badge   Badge      `json:"badge"`
}

func (HeaderBlock) Kind() BlockKind { return KindHeader }

// UsesLogo reports whether the header draws an image instead of the text badge.
func (h HeaderBlock) UsesLogo() bool {
	_, ok := h.Badge.(ImageBadge)
	return ok
}

// KeyValueBlock lays out groups of fields side by side, sized by Weights.
type KeyValueBlock struct {
	Name    string    `json:"name"`
	Groups  [][]Field `json:"groups"`
	Weights []float64 `json:"weights"`
}

func (KeyValueBlock) Kind() BlockKind { return KindKeyValue }

type Column struct {
	Header string  `json:"header"`
	Weight float64 `json:"weight"`
	Align  Align   `json:"align"`
}

type TableBlock struct {
	Name    string     `json:"name"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (TableBlock) Kind() BlockKind { return KindTable }

type TotalRow struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

type TotalsBlock struct {
	Rows []TotalRow `json:"rows"`
}

func (TotalsBlock) Kind() BlockKind { return KindTotals }

type TextListBlock struct {
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

func (TextListBlock) Kind() BlockKind { return KindTextList }

type SignatureBlock struct {
	Parties []string `json:"parties"`
}

func (SignatureBlock) Kind() BlockKind { return KindSignature }

type Model struct {
	Title    string  `json:"title"`
	FileName string  `json:"file_name"`
	Blocks   []Block `json:"blocks"`
}

// Find returns the first block of the given kind.
func (m Model) Find(kind BlockKind) (Block, bool) {
	for _, b := range m.Blocks {
		if b.Kind() == kind {
			return b, true
		}
	}
	return nil, false
}

type typedBlock struct {
	Type  BlockKind `json:"type"`
	Block Block     `json:"block"`
}

// MarshalJSON tags every block with its kind.
func (m Model) MarshalJSON() ([]byte, error) {
	blocks := make([]typedBlock, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		blocks = append(blocks, typedBlock{Type: b.Kind(), Block: b})
	}
	return json.Marshal(struct {
		Title    string       `json:"title"`
		FileName string       `json:"file_name"`
		Blocks   []typedBlock `json:"blocks"`
	}{m.Title, m.FileName, blocks})
}

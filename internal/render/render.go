// Package render defines the contract shared by the document renderers.
package render

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/angelmondragon/quotecatalog/internal/document"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// Renderer serializes a document model into a file.
type Renderer interface {
	Render(m document.Model) ([]byte, error)
	ContentType() string
	Extension() string
}

// Registry resolves renderers by format name.
type Registry struct {
	byFormat map[Format]Renderer
}

func NewRegistry() *Registry {
	return &Registry{byFormat: map[Format]Renderer{}}
}

func (r *Registry) Register(f Format, renderer Renderer) {
	r.byFormat[f] = renderer
}

func (r *Registry) Lookup(name string) (Renderer, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "" {
		f = FormatPDF
	}
	if renderer, ok := r.byFormat[f]; ok {
		return renderer, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported document format %q", name)).
		WithDetails(map[string]any{"format": name, "supported": r.Formats()})
}

// Formats lists the registered format names, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// FileName swaps the extension of the model's file name for ext.
func FileName(m document.Model, ext string) string {
	name := strings.TrimSuffix(m.FileName, ".pdf")
	return name + ext
}

// GridSizes spreads relative weights over a grid of total columns. Every
// column gets at least one cell and the sizes always add up to total.
func GridSizes(weights []float64, total int) []int {
	n := len(weights)
	sizes := make([]int, n)
	if n == 0 {
		return sizes
	}
	if n > total {
		total = n
	}
	sum := 0.0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 {
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1
		}
		sum = float64(n)
	}

	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, n)
	used := 0
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		exact := w / sum * float64(total)
		sizes[i] = int(math.Floor(exact))
		if sizes[i] < 1 {
			sizes[i] = 1
		}
		used += sizes[i]
		rems[i] = rem{i: i, frac: exact - math.Floor(exact)}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; used < total; k = (k + 1) % n {
		sizes[rems[k].i]++
		used++
	}
	for used > total {
		widest := 0
		for i := range sizes {
			if sizes[i] > sizes[widest] {
				widest = i
			}
		}
		sizes[widest]--
		used--
	}
	return sizes
}

// JSON exposes the model itself for clients that draw their own layout.
type JSON struct{}

func (JSON) Render(m document.Model) ([]byte, error) {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode document model")
	}
	return out, nil
}

func (JSON) ContentType() string { return "application/json" }

func (JSON) Extension() string { return ".json" }

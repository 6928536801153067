package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/quotecatalog/api/responses"
	"github.com/angelmondragon/quotecatalog/api/validators"
	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/search"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

const maxTermLength = 120

// CatalogService is the catalog surface of the quoting service.
type CatalogService interface {
	Catalog() *catalog.Catalog
	Categories() []string
	Formats() []string
	Reload(ctx context.Context) (catalog.Stats, error)
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type catalogView struct {
	Name           string                `json:"name"`
	DefaultVariant string                `json:"default_variant"`
	Variants       []catalog.VariantSpec `json:"variants"`
	Stats          catalog.Stats         `json:"stats"`
	Categories     int                   `json:"categories"`
	Formats        []string              `json:"formats"`
	LoadedAt       time.Time             `json:"loaded_at"`
}

func errCatalogNotLoaded() error {
	return pkgerrors.New(pkgerrors.CodeCatalogUnavailable, "catalog not loaded")
}

// CatalogInfo describes the loaded catalog.
func CatalogInfo(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := svc.Catalog()
		if c == nil {
			responses.WriteError(r.Context(), logg, w, errCatalogNotLoaded())
			return
		}
		responses.WriteSuccess(w, catalogView{
			Name:           c.Profile().Name,
			DefaultVariant: c.DefaultVariant(),
			Variants:       c.Variants(),
			Stats:          c.Stats(),
			Categories:     len(c.Categories()),
			Formats:        svc.Formats(),
			LoadedAt:       c.LoadedAt(),
		})
	}
}

func CatalogCategories(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Catalog() == nil {
			responses.WriteError(r.Context(), logg, w, errCatalogNotLoaded())
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": svc.Categories()})
	}
}

// CatalogReload reloads the price list now. The previous catalog keeps
// serving when the reload fails.
func CatalogReload(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Reload(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"stats": stats})
	}
}

// CatalogSearch answers GET /catalog/search. Query parameters:
// q, variant, limit, category, attr, attr_value, match, include, exclude.
func CatalogSearch(svc CatalogService, maxLimit int, logg *logger.Logger) http.HandlerFunc {
	if maxLimit <= 0 {
		maxLimit = search.MaxLimit
	}
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseSearchQuery(r, maxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Search(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func parseSearchQuery(r *http.Request, maxLimit int) (search.Query, error) {
	params := r.URL.Query()
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxLimit)
	if err != nil {
		return search.Query{}, err
	}
	q := search.Query{
		Term:           validators.SanitizeString(params.Get("q"), maxTermLength),
		VariantKey:     validators.SanitizeString(params.Get("variant"), 64),
		Limit:          limit,
		CategoryPrefix: validators.SanitizeString(params.Get("category"), 32),
	}

	attr := validators.SanitizeString(params.Get("attr"), 64)
	if attr == "" {
		return q, nil
	}
	include, err := validators.ParseQueryBool(r, "include")
	if err != nil {
		return search.Query{}, err
	}
	exclude, err := validators.ParseQueryBool(r, "exclude")
	if err != nil {
		return search.Query{}, err
	}
	match := search.MatchExact
	switch m := params.Get("match"); m {
	case "", string(search.MatchExact):
	case string(search.MatchContains):
		match = search.MatchContains
	default:
		return search.Query{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported match mode").
			WithDetails(map[string]any{"field": "match", "allowed": []search.MatchMode{search.MatchExact, search.MatchContains}})
	}
	q.AttributeFilter = &search.AttributeFilter{
		Attribute: attr,
		Value:     validators.SanitizeString(params.Get("attr_value"), 120),
		Match:     match,
		Include:   include,
		Exclude:   exclude,
	}
	return q, nil
}

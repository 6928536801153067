package quotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

type CalculatorOptions struct {
	Now func() time.Time
	// IDSuffix is inserted after the COT prefix, e.g. COT-MAD-202401-123456.
	IDSuffix            string
	DefaultTerms        []string
	DefaultValidityDays int
}

type Calculator struct {
	now          func() time.Time
	idSuffix     string
	terms        []string
	validityDays int
	validate     *validator.Validate
}

func NewCalculator(opts CalculatorOptions) *Calculator {
	c := &Calculator{
		now:          opts.Now,
		idSuffix:     strings.ToUpper(strings.TrimSpace(opts.IDSuffix)),
		terms:        append([]string(nil), opts.DefaultTerms...),
		validityDays: opts.DefaultValidityDays,
		validate:     validator.New(),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if len(c.terms) == 0 {
		c.terms = append([]string(nil), DefaultTerms...)
	}
	if c.validityDays <= 0 {
		c.validityDays = DefaultValidityDays
	}
	return c
}

// Compute validates the input and prices every line. Nothing is returned
// unless the client name and every quantity are valid.
func (c *Calculator) Compute(lines []CartLine, client ClientInfo, opts Options) (*Quotation, error) {
	client = trimClient(client)
	if err := c.validate.Struct(client); err != nil {
		return nil, &ValidationError{Field: FieldClientName, Index: -1, Message: "client name is required"}
	}
	if len(lines) == 0 {
		return nil, &ValidationError{Field: FieldLines, Index: -1, Message: "at least one line is required"}
	}
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, &ValidationError{Field: FieldQuantity, Index: i, Message: fmt.Sprintf("quantity must be at least 1, got %d", l.Quantity)}
		}
	}

	validity := opts.ValidityDays
	if validity <= 0 {
		validity = c.validityDays
	}
	now := c.now()

	q := &Quotation{
		ID:              c.newID(now),
		CreatedAt:       now,
		ExpiresAt:       now.Add(time.Duration(validity) * 24 * time.Hour),
		ValidityDays:    validity,
		Client:          client,
		VariantKey:      opts.VariantKey,
		VariantLabel:    opts.VariantLabel,
		Lines:           make([]Line, 0, len(lines)),
		Subtotal:        decimal.Zero,
		DiscountPercent: opts.DiscountPercent,
	}
	if q.VariantKey == "" && q.VariantLabel == "" {
		// a cart mixing locations has no single one to print
		if v, ok := sharedVariant(lines); ok {
			q.VariantKey, q.VariantLabel = v.Key, v.Label
		}
	}

	for _, l := range lines {
		p := l.Item.Product
		unit := l.Item.Amount
		total := unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
		q.Lines = append(q.Lines, Line{
			Reference:        p.Reference,
			Description:      p.Description,
			ShortDescription: p.ShortDescription,
			Notes:            p.Notes,
			Attributes:       copyAttributes(p.Attributes),
			Quantity:         l.Quantity,
			UnitPrice:        unit,
			LineTotal:        total,
		})
		q.Subtotal = q.Subtotal.Add(total)
	}

	q.DiscountAmount = q.Subtotal.Mul(opts.DiscountPercent).Div(hundred)
	q.Total = q.Subtotal.Sub(q.DiscountAmount)

	if len(opts.Terms) > 0 {
		q.Terms = append([]string(nil), opts.Terms...)
	} else {
		q.Terms = append([]string(nil), c.terms...)
	}
	return q, nil
}

// sharedVariant returns the price variant common to every line.
func sharedVariant(lines []CartLine) (catalog.PriceVariant, bool) {
	first := lines[0].Item.Variant
	for _, l := range lines[1:] {
		if l.Item.Variant.Key != first.Key {
			return catalog.PriceVariant{}, false
		}
	}
	return first, true
}

// newID renders COT[-SUFFIX]-YYYYMM-XXXXXX with the last six digits of the
// Unix timestamp as the tail.
func (c *Calculator) newID(now time.Time) string {
	tail := now.Unix() % 1000000
	if tail < 0 {
		tail = -tail
	}
	prefix := "COT"
	if c.idSuffix != "" {
		prefix += "-" + c.idSuffix
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, now.Format("200601"), tail)
}

func trimClient(c ClientInfo) ClientInfo {
	return ClientInfo{
		Name:    strings.TrimSpace(c.Name),
		TaxID:   strings.TrimSpace(c.TaxID),
		Company: strings.TrimSpace(c.Company),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
	}
}

func copyAttributes(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/angelmondragon/quotecatalog/pkg/config"
)

type item struct {
	Reference string
	Quantity  int
	Variant   string
}

// itemList collects repeated -item flags.
type itemList []item

func (l *itemList) String() string {
	parts := make([]string, 0, len(*l))
	for _, it := range *l {
		parts = append(parts, fmt.Sprintf("%s:%d", it.Reference, it.Quantity))
	}
	return strings.Join(parts, ",")
}

func (l *itemList) Set(value string) error {
	it, err := parseItem(value)
	if err != nil {
		return err
	}
	*l = append(*l, it)
	return nil
}

func parseItem(value string) (item, error) {
	parts := strings.Split(value, ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return item{}, fmt.Errorf("item %q: want REFERENCE[:QUANTITY[:VARIANT]]", value)
	}
	it := item{Reference: strings.TrimSpace(parts[0]), Quantity: 1}
	if len(parts) > 1 {
		qty, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || qty < 1 {
			return item{}, fmt.Errorf("item %q: quantity must be a positive integer", value)
		}
		it.Quantity = qty
	}
	if len(parts) > 2 {
		it.Variant = strings.TrimSpace(parts[2])
	}
	return it, nil
}

func sourceForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return config.SourceXLSX, nil
	case ".csv":
		return config.SourceCSV, nil
	case "":
		return "", fmt.Errorf("a price list file is required (-file or %s)", config.EnvCatalogPath)
	}
	return "", fmt.Errorf("unsupported price list %q", path)
}

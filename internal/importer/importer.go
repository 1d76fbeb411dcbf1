// Package importer loads catalog data from CSV files into the product and
// brand tables.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

// CSVImporter reads one variant per row. Rows sharing a slug (the slug column,
// or one derived from name_sr) belong to one product, and rows with neither
// continue the current product. Product columns are read from the first row
// of each group only.
//
// Columns: slug, brand, name_sr, name_en, description_sr, description_en,
// category, style, price, image_url, size, sku, quantity.
type CSVImporter struct {
	reader *csv.Reader
	writer *Writer
}

func NewCSVImporter(r io.Reader, writer *Writer) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, writer: writer}
}

type productGroup struct {
	product domain.Product
	brand   string
}

// Result counts what a run stored.
type Result struct {
	Products int
	Variants int
}

// Run parses the file and upserts products grouped by slug.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name_sr"]; !ok {
		return res, errors.New("missing required column name_sr")
	}

	var current *productGroup
	flush := func() error {
		if current == nil {
			return nil
		}
		saved, err := i.writer.Save(ctx, current.product, current.brand)
		if err != nil {
			return err
		}
		res.Products++
		res.Variants += len(saved.Variants)
		return nil
	}

	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		slug := domain.Slugify(pick(record, index, "slug"))
		if slug == "" {
			slug = domain.Slugify(pick(record, index, "name_sr"))
		}
		if current == nil || (slug != "" && slug != current.product.Slug) {
			if err := flush(); err != nil {
				return res, err
			}
			group, err := parseProduct(record, index, slug)
			if err != nil {
				return res, fmt.Errorf("row %d: %w", line, err)
			}
			current = group
		}

		v, ok, err := parseVariant(record, index)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", line, err)
		}
		if ok {
			current.product.Variants = append(current.product.Variants, v)
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func parseProduct(record []string, index map[string]int, slug string) (*productGroup, error) {
	cents, err := ParseCents(pick(record, index, "price"))
	if err != nil {
		return nil, err
	}
	name := pick(record, index, "name_sr")
	if slug == "" {
		slug = domain.Slugify(name)
	}
	return &productGroup{
		brand: pick(record, index, "brand"),
		product: domain.Product{
			Slug:           slug,
			NameSr:         name,
			NameEn:         pick(record, index, "name_en"),
			DescriptionSr:  pick(record, index, "description_sr"),
			DescriptionEn:  pick(record, index, "description_en"),
			Category:       strings.ToLower(pick(record, index, "category")),
			Style:          strings.ToLower(pick(record, index, "style")),
			BasePriceCents: cents,
			ImageURL:       pick(record, index, "image_url"),
			IsActive:       true,
		},
	}, nil
}

func parseVariant(record []string, index map[string]int) (domain.Variant, bool, error) {
	size := pick(record, index, "size")
	if size == "" {
		return domain.Variant{}, false, nil
	}
	qty := 0
	if raw := pick(record, index, "quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.Variant{}, false, fmt.Errorf("invalid quantity %q", raw)
		}
		qty = n
	}
	return domain.Variant{Size: size, SKU: pick(record, index, "sku"), Quantity: qty}, true, nil
}

// ParseCents reads a euro amount such as "40", "40.5" or "40,50" as cents.
func ParseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), domain.CurrencySymbol))
	if raw == "" {
		return 0, nil
	}
	whole, frac, hasFrac := strings.Cut(strings.ReplaceAll(raw, ",", "."), ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid price %q", raw)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid price %q", raw)
		}
	}
	return units*100 + cents, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

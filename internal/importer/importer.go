package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/pricing"
)

type ProductWriter interface {
	UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	UpsertCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
}

// CSVImporter reads a menu CSV and upserts categories and products.
//
// Expected columns: category, category.name, key, sku, name, description,
// price, currency, available, modifiers. Modifiers are "key:Name:price"
// separated by ";". A row with an empty key continues the previous product
// and only contributes modifiers.
type CSVImporter struct {
	reader          *csv.Reader
	products        ProductWriter
	categories      CategoryWriter
	establishmentID string
	currency        string

	categoryIDs map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, establishmentID, currency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	return &CSVImporter{
		reader:          csvr,
		products:        products,
		categories:      categories,
		establishmentID: establishmentID,
		currency:        currency,
		categoryIDs:     make(map[string]string),
	}
}

type csvRow struct {
	line         int
	CategoryKey  string
	CategoryName string
	Key          string
	SKU          string
	Name         string
	Desc         string
	Price        string
	Currency     string
	Available    string
	Modifiers    []domain.Modifier
}

// Run parses CSV rows and upserts products grouped by product key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("menu csv needs a key column")
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current == nil {
			return imported, fmt.Errorf("line %d: modifier row before any product", line)
		}
		current.Modifiers = append(current.Modifiers, row.Modifiers...)
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.Price == "" {
		return fmt.Errorf("line %d: product %q needs name and price", row.line, row.Key)
	}
	cents, err := pricing.ParseAmount(row.Price)
	if err != nil {
		return fmt.Errorf("line %d: %w", row.line, err)
	}

	currency := row.Currency
	if currency == "" {
		currency = i.currency
	}
	sku := row.SKU
	if sku == "" {
		sku = strings.ToUpper(row.Key)
	}
	available := true
	if row.Available != "" {
		available, err = strconv.ParseBool(row.Available)
		if err != nil {
			return fmt.Errorf("line %d: available %q: %w", row.line, row.Available, err)
		}
	}

	p := domain.Product{
		EstablishmentID: i.establishmentID,
		Key:             row.Key,
		SKU:             sku,
		Name:            row.Name,
		Description:     row.Desc,
		PriceCents:      cents,
		Currency:        currency,
		Modifiers:       row.Modifiers,
		Available:       available,
	}
	if row.CategoryKey != "" {
		id, err := i.category(ctx, row)
		if err != nil {
			return err
		}
		p.CategoryID = &id
	}

	if _, err := i.products.UpsertProduct(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

// category upserts each category once, positioned in order of first use.
func (i *CSVImporter) category(ctx context.Context, row *csvRow) (string, error) {
	if id, ok := i.categoryIDs[row.CategoryKey]; ok {
		return id, nil
	}
	name := row.CategoryName
	if name == "" {
		name = titleCase(row.CategoryKey)
	}
	c, err := i.categories.UpsertCategory(ctx, domain.Category{
		EstablishmentID: i.establishmentID,
		Key:             row.CategoryKey,
		Name:            name,
		Position:        len(i.categoryIDs),
	})
	if err != nil {
		return "", fmt.Errorf("upsert category %q: %w", row.CategoryKey, err)
	}
	i.categoryIDs[row.CategoryKey] = c.ID
	return c.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	row := &csvRow{
		line:         line,
		CategoryKey:  pick(record, index, "category"),
		CategoryName: pick(record, index, "category.name"),
		Key:          pick(record, index, "key"),
		SKU:          pick(record, index, "sku"),
		Name:         pick(record, index, "name"),
		Desc:         pick(record, index, "description"),
		Price:        pick(record, index, "price"),
		Currency:     strings.ToUpper(pick(record, index, "currency")),
		Available:    pick(record, index, "available"),
	}
	modifiers, err := parseModifiers(pick(record, index, "modifiers"))
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	row.Modifiers = modifiers

	if row.Key == "" && len(row.Modifiers) == 0 {
		return nil, nil
	}
	return row, nil
}

func parseModifiers(raw string) ([]domain.Modifier, error) {
	var out []domain.Modifier
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("modifier %q must be key:name:price", part)
		}
		cents, err := pricing.ParseAmount(fields[2])
		if err != nil {
			return nil, fmt.Errorf("modifier %q: %w", part, err)
		}
		out = append(out, domain.Modifier{
			Key:        strings.TrimSpace(fields[0]),
			Name:       strings.TrimSpace(fields[1]),
			PriceCents: cents,
		})
	}
	return out, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func titleCase(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

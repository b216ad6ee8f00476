package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type CartWriter interface {
	AddItem(ctx context.Context, storageKey string, in cartsvc.AddInput) (cartsvc.View, error)
	MemoryOnly(storageKey string) bool
}

// CSVImporter loads exported carts, one line item per row, into the cart
// store of each row's storage key. Rows go through AddItem, so repeated
// product/variant rows merge into one line.
type CSVImporter struct {
	reader *csv.Reader
	carts  CartWriter
}

func NewCSVImporter(r io.Reader, carts CartWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, carts: carts}
}

// Result counts imported lines and the storage-key groups they came in.
type Result struct {
	Carts int
	Lines int
}

type csvRow struct {
	line       int
	storageKey string
	input      cartsvc.AddInput
}

// Run imports every row. A row with a blank storage_key continues the cart
// of the row above it.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"product_id", "unit_price"} {
		if _, ok := index[required]; !ok {
			return Result{}, fmt.Errorf("missing column %q", required)
		}
	}

	var (
		res     Result
		current string
		line    = 1
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return res, err
		}
		if row == nil {
			continue
		}
		if row.storageKey == "" {
			row.storageKey = current
		}
		if row.storageKey == "" {
			return res, fmt.Errorf("row %d: storage_key required", line)
		}
		if row.storageKey != current {
			current = row.storageKey
			res.Carts++
		}

		if _, err := i.carts.AddItem(ctx, row.storageKey, row.input); err != nil {
			return res, fmt.Errorf("row %d: %w", row.line, err)
		}
		if i.carts.MemoryOnly(row.storageKey) {
			return res, fmt.Errorf("row %d: cart %s: %w", row.line, row.storageKey, domain.ErrNotPersisted)
		}
		res.Lines++
	}
	return res, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	productID := pick(record, index, "product_id")
	if productID == "" {
		return nil, nil
	}

	price, err := decimal.NewFromString(pick(record, index, "unit_price"))
	if err != nil {
		return nil, fmt.Errorf("row %d: unit_price: %w", line, err)
	}
	p := domain.Product{
		ID:    productID,
		Name:  pick(record, index, "name"),
		Brand: pick(record, index, "brand"),
		Price: price,
	}
	if img := pick(record, index, "image_url"); img != "" {
		p.Images = []string{img}
	}
	if raw := pick(record, index, "original_price"); raw != "" {
		orig, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: original_price: %w", line, err)
		}
		p.OriginalPrice = &orig
	}
	if raw := pick(record, index, "stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: stock: %w", line, err)
		}
		p.Stock = &stock
	}

	qty := 1
	if raw := pick(record, index, "quantity"); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: quantity: %w", line, err)
		}
	}

	return &csvRow{
		line:       line,
		storageKey: pick(record, index, "storage_key"),
		input: cartsvc.AddInput{
			Product:  p,
			Quantity: &qty,
			Size:     pick(record, index, "size"),
			Color:    pick(record, index, "color"),
		},
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

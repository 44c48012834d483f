package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository/mongodb"
	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var catalogColumns = []string{"name", "batch_number", "category", "manufacturer", "stock", "reorder_level", "price", "expiry_date"}

func runCatalogSeed(c *cli.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Context

	accounts := mongodb.NewAccountRepository(store.DB)
	pharmacist, err := accounts.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(c.String("pharmacist"))))
	if err != nil {
		return fmt.Errorf("find pharmacist: %w", err)
	}
	if !pharmacist.IsPharmacist() {
		return fmt.Errorf("%s is not a pharmacist account", pharmacist.Email)
	}

	inventory := service.NewInventoryService(mongodb.NewMedicineRepository(store.DB), accounts, nil, nil, nil, nil)

	filePath := c.String("file")
	log.Info().Str("file", filePath).Str("pharmacist", pharmacist.Email).Msg("importing catalog")

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return err
	}

	var imported, skipped int
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("error reading CSV line %d: %w", line, err)
		}

		input, err := parseCatalogRow(record, index)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping catalog row")
			skipped++
			continue
		}
		if _, err := inventory.Create(ctx, pharmacist.ID, input); err != nil {
			if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInvalidInput) {
				log.Warn().Err(err).Int("line", line).Msg("skipping catalog row")
				skipped++
				continue
			}
			return fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	log.Info().Int("imported", imported).Int("skipped", skipped).Msg("catalog import finished")
	return nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"name", "batch_number", "stock", "price", "expiry_date"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("catalog is missing column %q (expected %s)", col, strings.Join(catalogColumns, ","))
		}
	}
	return index, nil
}

func parseCatalogRow(record []string, index map[string]int) (service.MedicineInput, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	stock, err := strconv.Atoi(field("stock"))
	if err != nil {
		return service.MedicineInput{}, fmt.Errorf("invalid stock %q", field("stock"))
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return service.MedicineInput{}, fmt.Errorf("invalid price %q", field("price"))
	}
	expiry, err := time.Parse("2006-01-02", field("expiry_date"))
	if err != nil {
		return service.MedicineInput{}, fmt.Errorf("invalid expiry_date %q", field("expiry_date"))
	}

	input := service.MedicineInput{
		Name:         field("name"),
		BatchNumber:  field("batch_number"),
		Category:     field("category"),
		Manufacturer: field("manufacturer"),
		Stock:        stock,
		Price:        price,
		ExpiryDate:   expiry,
	}
	if raw := field("reorder_level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return service.MedicineInput{}, fmt.Errorf("invalid reorder_level %q", raw)
		}
		input.ReorderLevel = &level
	}
	return input, nil
}

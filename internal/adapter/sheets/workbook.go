// Package sheets keeps the catalog and leads in an .xlsx workbook so that
// operators can inspect and hand-edit data in a spreadsheet. Entities are
// served from memory and the whole workbook is rewritten after each write.
package sheets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/neomorfeo/nettap/internal/domain"
	"github.com/neomorfeo/nettap/internal/seed"
)

// Sheet names, in workbook order.
const (
	SheetCities    = "Cities"
	SheetDistricts = "Districts"
	SheetISPs      = "ISPs"
	SheetTariffs   = "Tariffs"
	SheetLeads     = "Leads"
	SheetUsers     = "Users"
)

var sheetOrder = []string{SheetCities, SheetDistricts, SheetISPs, SheetTariffs, SheetLeads, SheetUsers}

var header = []any{"id", "record"}

// row is one entity: its id for humans and its JSON for the loader.
type row struct {
	id     string
	record any
}

func rowsOf[T any](items []T, id func(T) string) []row {
	out := make([]row, len(items))
	for i, it := range items {
		out[i] = row{id: id(it), record: it}
	}
	return out
}

// writeWorkbook replaces the file at path atomically.
func writeWorkbook(path string, data seed.Data, leads []domain.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := map[string][]row{
		SheetCities:    rowsOf(data.Cities, func(c domain.City) string { return c.ID }),
		SheetDistricts: rowsOf(data.Districts, func(d domain.District) string { return d.ID }),
		SheetISPs:      rowsOf(data.ISPs, func(i domain.ISP) string { return i.ID }),
		SheetTariffs:   rowsOf(data.Tariffs, func(t domain.Tariff) string { return t.ID }),
		SheetLeads:     rowsOf(leads, func(l domain.Lead) string { return l.ID }),
		SheetUsers:     rowsOf(data.Users, func(u domain.User) string { return u.ID }),
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, name := range sheetOrder {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("renaming default sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}

		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("writing %s header: %w", name, err)
		}
		if err := f.SetCellStyle(name, "A1", "B1", headerStyle); err != nil {
			return fmt.Errorf("styling %s header: %w", name, err)
		}
		if err := f.SetColWidth(name, "A", "A", 40); err != nil {
			return fmt.Errorf("sizing %s: %w", name, err)
		}

		for n, r := range sheets[name] {
			encoded, err := json.Marshal(r.record)
			if err != nil {
				return fmt.Errorf("encoding %s %s: %w", name, r.id, err)
			}
			cell, err := excelize.CoordinatesToCellName(1, n+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &[]any{r.id, string(encoded)}); err != nil {
				return fmt.Errorf("writing %s %s: %w", name, r.id, err)
			}
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temporary workbook: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("saving workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing workbook: %w", err)
	}
	return nil
}

// readWorkbook loads every sheet. A missing file yields empty data.
func readWorkbook(path string) (seed.Data, []domain.Lead, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return seed.Data{}, nil, nil
	}
	if err != nil {
		return seed.Data{}, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var data seed.Data
	var leads []domain.Lead
	if err := readSheet(f, SheetCities, &data.Cities); err != nil {
		return seed.Data{}, nil, err
	}
	if err := readSheet(f, SheetDistricts, &data.Districts); err != nil {
		return seed.Data{}, nil, err
	}
	if err := readSheet(f, SheetISPs, &data.ISPs); err != nil {
		return seed.Data{}, nil, err
	}
	if err := readSheet(f, SheetTariffs, &data.Tariffs); err != nil {
		return seed.Data{}, nil, err
	}
	if err := readSheet(f, SheetLeads, &leads); err != nil {
		return seed.Data{}, nil, err
	}
	if err := readSheet(f, SheetUsers, &data.Users); err != nil {
		return seed.Data{}, nil, err
	}
	return data, leads, nil
}

func readSheet[T any](f *excelize.File, name string, out *[]T) error {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", name, err)
	}

	for i, cols := range rows {
		if i == 0 || len(cols) < 2 || cols[1] == "" {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(cols[1]), &item); err != nil {
			return fmt.Errorf("decoding %s row %d: %w", name, i+1, err)
		}
		*out = append(*out, item)
	}
	return nil
}

package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

const (
	contentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV   = "text/csv"
	summarySheetName = "Profile"
)

// exportTable is one sheet of an export: a header row plus data rows
type exportTable struct {
	name    string
	columns []string
	rows    [][]any
}

func (u *profileUsecase) ExportProfile(ctx context.Context, ownerID, format string, section domain.SectionName) (*domain.ProfileExport, error) {
	if format == "" {
		format = domain.ExportXLSX
	}
	if format != domain.ExportXLSX && format != domain.ExportCSV {
		return nil, apperror.BadRequest(fmt.Sprintf("unsupported export format: %s", format))
	}

	var spec domain.SectionSpec
	if section != "" || format == domain.ExportCSV {
		var ok bool
		spec, ok = domain.LookupSection(section)
		if !ok || !spec.IsCollection() || spec.Name == domain.SectionSkills {
			return nil, apperror.InvalidSection(fmt.Sprintf("Invalid list section: %s", section))
		}
	}

	profile, err := u.loadProfile(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, apperror.Persistence(err)
	}

	var tables []exportTable
	if spec.Name != "" {
		tables = []exportTable{collectionTable(spec.Name, profile.Collection(spec.Name))}
	} else {
		tables = profileTables(profile)
	}

	stamp := u.now().Format("20060102_150405")
	if format == domain.ExportCSV {
		data, err := writeCSV(tables[0])
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return &domain.ProfileExport{
			Filename:    fmt.Sprintf("profile_%s_%s.csv", spec.Name, stamp),
			ContentType: contentTypeCSV,
			Data:        data,
		}, nil
	}

	data, err := writeWorkbook(tables)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.ProfileExport{
		Filename:    fmt.Sprintf("profile_%s.xlsx", stamp),
		ContentType: contentTypeXLSX,
		Data:        data,
	}, nil
}

// profileTables lays out a whole profile: scalar sections become field/value
// rows of the summary sheet, list sections get a sheet each.
func profileTables(p *domain.Profile) []exportTable {
	summary := exportTable{name: summarySheetName, columns: []string{"section", "field", "value"}}
	var lists []exportTable

	for _, spec := range domain.Sections() {
		value, ok := p.Section(spec.Name)
		if !ok || value == nil {
			continue
		}
		items, isList := value.([]any)
		if spec.IsCollection() && isList {
			lists = append(lists, collectionTable(spec.Name, items))
			continue
		}

		fields, isObject := value.(domain.Fields)
		if !isObject {
			if m, ok := value.(map[string]any); ok {
				fields, isObject = domain.Fields(m), true
			}
		}
		if !isObject {
			summary.rows = append(summary.rows, []any{string(spec.Name), "", cellValue(value)})
			continue
		}
		for _, key := range sortedKeys(fields) {
			summary.rows = append(summary.rows, []any{string(spec.Name), key, cellValue(fields[key])})
		}
	}
	return append([]exportTable{summary}, lists...)
}

// collectionTable uses the union of item keys as columns. Item ids are left out.
func collectionTable(name domain.SectionName, items []any) exportTable {
	table := exportTable{name: string(name)}

	seen := map[string]bool{}
	for _, item := range items {
		for key := range domain.AsFields(item) {
			if key != domain.ItemIDKey && !seen[key] {
				seen[key] = true
				table.columns = append(table.columns, key)
			}
		}
	}
	sort.Strings(table.columns)

	if len(table.columns) == 0 {
		table.columns = []string{"value"}
		for _, item := range items {
			table.rows = append(table.rows, []any{cellValue(item)})
		}
		return table
	}

	for _, item := range items {
		fields := domain.AsFields(item)
		row := make([]any, len(table.columns))
		for i, col := range table.columns {
			row[i] = cellValue(fields[col])
		}
		table.rows = append(table.rows, row)
	}
	return table
}

// cellValue flattens a JSON value for a single cell
func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string, float64, bool:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fmt.Sprint(cellValue(e)))
		}
		return strings.Join(parts, "; ")
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

func sortedKeys(f domain.Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeWorkbook(tables []exportTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(table.name); err != nil {
			return nil, err
		}

		for col, header := range table.columns {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(table.name, cell, header); err != nil {
				return nil, err
			}
		}
		endCell, _ := excelize.CoordinatesToCellName(len(table.columns), 1)
		if err := f.SetCellStyle(table.name, "A1", endCell, headerStyle); err != nil {
			return nil, err
		}

		for r, row := range table.rows {
			for col, value := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := f.SetCellValue(table.name, cell, value); err != nil {
					return nil, err
				}
			}
		}

		lastCol, _ := excelize.ColumnNumberToName(len(table.columns))
		if err := f.SetColWidth(table.name, "A", lastCol, 24); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCSV(table exportTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.columns); err != nil {
		return nil, err
	}
	for _, row := range table.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

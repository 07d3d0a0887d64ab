package fileio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/strcase"
)

// table is a row-oriented csv read with snake_case column names.
type table struct {
	header []string
	col    map[string]int
	rows   [][]string
	lines  []int
}

func normalizeColumn(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	return strcase.ToSnake(name)
}

// readTable reads the header and at most nrows data rows; nrows <= 0 reads all.
func readTable(r io.Reader, nrows int) (*table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv has no header")
	}
	if err != nil {
		return nil, err
	}

	t := &table{col: map[string]int{}}
	for i, h := range header {
		name := normalizeColumn(h)
		t.header = append(t.header, name)
		t.col[name] = i
	}

	for nrows <= 0 || len(t.rows) < nrows {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func (t *table) get(row []string, name string) string {
	i, ok := t.col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) has(name string) bool {
	_, ok := t.col[name]
	return ok
}

func (t *table) require(names ...string) error {
	for _, name := range names {
		if !t.has(name) {
			return fmt.Errorf("missing required column: %s", name)
		}
	}
	return nil
}

func (t *table) rename(renames map[string]string) {
	for from, to := range renames {
		i, ok := t.col[from]
		if !ok {
			continue
		}
		delete(t.col, from)
		t.col[to] = i
		t.header[i] = to
	}
}

func (t *table) drop(name string) {
	delete(t.col, name)
}

// dropIncomplete removes rows with a missing or blank cell in any column.
func (t *table) dropIncomplete() {
	rows := t.rows[:0]
	lines := t.lines[:0]
	for i, row := range t.rows {
		if len(row) < len(t.header) {
			continue
		}
		complete := true
		for _, cell := range row[:len(t.header)] {
			if strings.TrimSpace(cell) == "" {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, row)
			lines = append(lines, t.lines[i])
		}
	}
	t.rows = rows
	t.lines = lines
}

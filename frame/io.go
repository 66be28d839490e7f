package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Delimiter guesses the field separator from a file name.
func Delimiter(fileName string) rune {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".tsv", ".txt", ".tab":
		return '\t'
	}
	return ','
}

// ReadFile reads a delimited table from a file.
func ReadFile(fileName string) (*Frame, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fr, err := Read(f, Delimiter(fileName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return fr, nil
}

// Read reads a delimited table. The first record holds the column names, the
// first field of every record the sample id. QIIME 2 directive rows (#q2:)
// are skipped.
func Read(r io.Reader, comma rune) (*Frame, error) {
	rd := csv.NewReader(r)
	rd.Comma = comma
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true

	var header []string
	var index []string
	var rows [][]float64
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > 0 && strings.HasPrefix(rec[0], "#q2:") {
			continue
		}
		if header == nil {
			if len(rec) < 2 {
				return nil, errors.New("header needs an index and at least one column")
			}
			header = rec[1:]
			continue
		}
		if len(rec) != len(header)+1 {
			line, _ := rd.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d fields, want %d", line, len(rec), len(header)+1)
		}
		row := make([]float64, len(header))
		for j, field := range rec[1:] {
			v, err := parseValue(field)
			if err != nil {
				line, _ := rd.FieldPos(j + 1)
				return nil, fmt.Errorf("line %d, column %q: %w", line, header[j], err)
			}
			row[j] = v
		}
		index = append(index, rec[0])
		rows = append(rows, row)
	}
	if header == nil {
		return nil, errors.New("empty table")
	}
	return FromRows(index, header, rows)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// Write writes the frame as a delimited table with the given index header.
func (f *Frame) Write(w io.Writer, comma rune, indexName string) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(append([]string{indexName}, f.Columns...)); err != nil {
		return err
	}
	_, c := f.Dims()
	rec := make([]string, c+1)
	for i, s := range f.Index {
		rec[0] = s
		for j := 0; j < c; j++ {
			rec[j+1] = strconv.FormatFloat(f.Data.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package artifact

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/JetbluejetYJ/dokdo/frame"
)

var hdf5Magic = []byte("\x89HDF\r\n\x1a\n")

const biomFormat = "Biological Observation Matrix 1.0.0"

type biomEntry struct {
	ID string `json:"id"`
}

// biomTable is the JSON (1.0) flavour of a BIOM table. Rows are
// observations (features), columns are samples.
type biomTable struct {
	ID         string      `json:"id,omitempty"`
	Format     string      `json:"format"`
	Type       string      `json:"type"`
	MatrixType string      `json:"matrix_type"`
	Shape      [2]int      `json:"shape"`
	Rows       []biomEntry `json:"rows"`
	Columns    []biomEntry `json:"columns"`
	Data       [][]float64 `json:"data"`
}

// readBIOM decodes a BIOM 1.0 JSON table into a samples × features frame.
func readBIOM(data []byte) (*frame.Frame, error) {
	if bytes.HasPrefix(data, hdf5Magic) {
		return nil, fmt.Errorf("%w: BIOM 2 (HDF5) tables must be exported as JSON or TSV", ErrUnsupportedFormat)
	}
	var bt biomTable
	if err := json.Unmarshal(data, &bt); err != nil {
		return nil, fmt.Errorf("biom: %w", err)
	}
	nr, nc := len(bt.Rows), len(bt.Columns)
	if bt.Shape != [2]int{nr, nc} {
		return nil, fmt.Errorf("biom: shape %v does not match %d rows and %d columns", bt.Shape, nr, nc)
	}
	if nr == 0 || nc == 0 {
		return nil, fmt.Errorf("biom: empty table")
	}

	m := mat.NewDense(nr, nc, nil)
	switch bt.MatrixType {
	case "dense":
		if len(bt.Data) != nr {
			return nil, fmt.Errorf("biom: %d data rows, want %d", len(bt.Data), nr)
		}
		for i, row := range bt.Data {
			if len(row) != nc {
				return nil, fmt.Errorf("biom: row %d has %d values, want %d", i, len(row), nc)
			}
			m.SetRow(i, row)
		}
	case "sparse":
		for _, e := range bt.Data {
			if len(e) != 3 {
				return nil, fmt.Errorf("biom: sparse entry %v is not [row, column, value]", e)
			}
			i, j := int(e[0]), int(e[1])
			if i < 0 || i >= nr || j < 0 || j >= nc {
				return nil, fmt.Errorf("biom: sparse entry %v out of range", e)
			}
			m.Set(i, j, e[2])
		}
	default:
		return nil, fmt.Errorf("biom: unknown matrix_type %q", bt.MatrixType)
	}

	obs, err := frame.New(ids(bt.Rows), ids(bt.Columns), m)
	if err != nil {
		return nil, err
	}
	return obs.T(), nil
}

func ids(entries []biomEntry) []string {
	s := make([]string, len(entries))
	for i, e := range entries {
		s[i] = e.ID
	}
	return s
}

// writeBIOM encodes a samples × features frame as a dense BIOM 1.0 table.
func writeBIOM(w io.Writer, f *frame.Frame, id string) error {
	obs := f.T()
	nr, nc := obs.Dims()
	bt := biomTable{
		ID:         id,
		Format:     biomFormat,
		Type:       "OTU table",
		MatrixType: "dense",
		Shape:      [2]int{nr, nc},
		Rows:       make([]biomEntry, nr),
		Columns:    make([]biomEntry, nc),
		Data:       make([][]float64, nr),
	}
	for i, s := range obs.Index {
		bt.Rows[i].ID = s
		bt.Data[i] = mat.Row(nil, i, obs.Data)
	}
	for j, s := range obs.Columns {
		bt.Columns[j].ID = s
	}
	return json.NewEncoder(w).Encode(bt)
}

// readClassic reads a BIOM "classic" TSV export: a "# Constructed from biom
// file" banner, then "#OTU ID" and one column per sample.
func readClassic(data []byte) (*frame.Frame, error) {
	var buf bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "#OTU ID") {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	obs, err := frame.Read(&buf, '\t')
	if err != nil {
		return nil, err
	}
	return obs.T(), nil
}

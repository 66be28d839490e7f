package dokdo

import (
	"encoding/csv"
	"io"
	"strconv"
)

// TableHeader is the column order of a cross-association table.
var TableHeader = []string{"taxon", "target", "corr", "pval", "adjp"}

// Fields formats a row in TableHeader order.
func (r Row) Fields() []string {
	return []string{
		r.Taxon,
		r.Target,
		strconv.FormatFloat(r.Corr, 'g', -1, 64),
		strconv.FormatFloat(r.PVal, 'g', -1, 64),
		strconv.FormatFloat(r.AdjP, 'g', -1, 64),
	}
}

// WriteTable writes rows as CSV with a header line.
func WriteTable(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

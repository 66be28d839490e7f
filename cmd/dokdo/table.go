package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/JetbluejetYJ/dokdo"
	"github.com/JetbluejetYJ/dokdo/artifact"
)

type cmdTable struct {
	*cmdConfig

	featureFile *string
	targetFile  *string
	outFile     *string
	head        *int
}

func (cmd *cmdTable) Register(app *kingpin.Application) {
	c := app.Command("table", "compute the cross-association table")
	cmd.featureFile = c.Arg("features", "feature table: .qza holding BIOM 1.0 JSON or classic TSV (BIOM 2.x HDF5 is not read), or .csv/.tsv with samples as rows").Required().String()
	cmd.targetFile = c.Arg("target", "target matrix (.csv or .tsv; samples as rows)").Required().String()
	cmd.outFile = c.Flag("output", "output CSV file; prints to stdout when empty").Short('o').Default("").String()
	cmd.head = c.Flag("head", "number of rows printed to stdout").Default("10").Int()
	c.Action(func(*kingpin.ParseContext) error {
		defer cmd.sync()
		return cmd.Run()
	})
}

func (cmd *cmdTable) Run() error {
	if err := cmd.ParseConfig(); err != nil {
		return err
	}
	feats, target, err := cmd.loadTables(*cmd.featureFile, *cmd.targetFile)
	if err != nil {
		return err
	}

	stop := cmd.startProgress(len(feats.Columns))
	rows, err := dokdo.CrossAssociationTable(artifact.Table{Frame: feats}, target, cmd.opts)
	stop()
	if err != nil {
		return err
	}

	if *cmd.outFile == "" {
		fmt.Println(renderRows(rows, *cmd.head))
		return nil
	}

	w, err := os.Create(*cmd.outFile)
	if err != nil {
		return err
	}
	if err := dokdo.WriteTable(w, rows); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	cmd.logger.Info("cross-association table saved",
		zap.String("file", *cmd.outFile), zap.Int("rows", len(rows)))
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderRows formats the first n rows as a terminal table.
func renderRows(rows []dokdo.Row, n int) string {
	if n < 0 || n > len(rows) {
		n = len(rows)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(append([]string{""}, dokdo.TableHeader...)...)
	for i, r := range rows[:n] {
		t.Row(
			strconv.Itoa(i),
			r.Taxon,
			r.Target,
			strconv.FormatFloat(r.Corr, 'g', 6, 64),
			strconv.FormatFloat(r.PVal, 'e', 6, 64),
			strconv.FormatFloat(r.AdjP, 'g', 6, 64),
		)
	}
	return t.Render()
}

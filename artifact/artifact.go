// Package artifact loads feature tables from QIIME 2 artifacts (.qza), plain
// delimited files or in-memory tables.
package artifact

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/JetbluejetYJ/dokdo/frame"
)

var (
	// ErrUnsupportedArtifactType is returned for a feature table source
	// that is neither an artifact, a path nor a table.
	ErrUnsupportedArtifactType = errors.New("incorrect feature table type")
	// ErrUnsupportedFormat is returned for archives whose payload cannot be
	// decoded.
	ErrUnsupportedFormat = errors.New("unsupported artifact format")
)

const archiveVersion = "QIIME 2\narchive: 5\nframework: 2023.5.1\n"

// Artifact is a loaded QIIME 2 artifact holding a feature table.
type Artifact struct {
	UUID   uuid.UUID
	Type   string // semantic type, e.g. FeatureTable[Frequency].
	Format string

	table *frame.Frame // samples × features.
}

type metadata struct {
	UUID   string `yaml:"uuid"`
	Type   string `yaml:"type"`
	Format string `yaml:"format"`
}

// New wraps an in-memory samples × features table.
func New(semanticType string, table *frame.Frame) *Artifact {
	return &Artifact{
		UUID:   uuid.New(),
		Type:   semanticType,
		Format: "BIOMV100DirFmt",
		table:  table.Copy(),
	}
}

// Load reads a .qza archive.
func Load(fileName string) (*Artifact, error) {
	zr, err := zip.OpenReader(fileName)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	a, err := decode(&zr.Reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return a, nil
}

// Read reads a .qza archive from r.
func Read(r io.ReaderAt, size int64) (*Artifact, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return decode(zr)
}

func decode(zr *zip.Reader) (*Artifact, error) {
	var md *metadata
	var payload *zip.File
	for _, f := range zr.File {
		parts := strings.Split(f.Name, "/")
		switch {
		case len(parts) == 2 && parts[1] == "metadata.yaml":
			data, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			md = &metadata{}
			if err := yaml.Unmarshal(data, md); err != nil {
				return nil, fmt.Errorf("metadata.yaml: %w", err)
			}
		case len(parts) == 3 && parts[1] == "data" && payload == nil && isTableFile(parts[2]):
			payload = f
		}
	}
	if md == nil {
		return nil, fmt.Errorf("%w: no metadata.yaml", ErrUnsupportedFormat)
	}
	id, err := uuid.Parse(md.UUID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad uuid %q", ErrUnsupportedFormat, md.UUID)
	}
	a := &Artifact{UUID: id, Type: md.Type, Format: md.Format}
	if !a.isFeatureTable() {
		return a, nil
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: no table in %s data", ErrUnsupportedFormat, md.Type)
	}

	data, err := readZipFile(payload)
	if err != nil {
		return nil, err
	}
	if path.Ext(payload.Name) == ".biom" {
		a.table, err = readBIOM(data)
	} else {
		a.table, err = readClassic(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", payload.Name, err)
	}
	return a, nil
}

func isTableFile(name string) bool {
	switch path.Ext(name) {
	case ".biom", ".tsv", ".txt":
		return true
	}
	return false
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (a *Artifact) isFeatureTable() bool {
	return strings.HasPrefix(a.Type, "FeatureTable[")
}

// View returns a copy of the feature table, samples × features.
func (a *Artifact) View() (*frame.Frame, error) {
	if !a.isFeatureTable() || a.table == nil {
		return nil, fmt.Errorf("artifact %s of type %s cannot be viewed as a feature table", a.UUID, a.Type)
	}
	return a.table.Copy(), nil
}

// Write writes the artifact as a .qza archive with a BIOM 1.0 JSON payload.
func (a *Artifact) Write(w io.Writer) error {
	if a.table == nil {
		return fmt.Errorf("artifact %s has no table", a.UUID)
	}
	root := a.UUID.String()
	md, err := yaml.Marshal(metadata{UUID: root, Type: a.Type, Format: a.Format})
	if err != nil {
		return err
	}
	var biom bytes.Buffer
	if err := writeBIOM(&biom, a.table, root); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{"VERSION", []byte(archiveVersion)},
		{"metadata.yaml", md},
		{"data/feature-table.biom", biom.Bytes()},
	} {
		fw, err := zw.Create(root + "/" + entry.name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(entry.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Save writes the artifact to a .qza file.
func (a *Artifact) Save(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := a.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

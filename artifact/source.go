package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JetbluejetYJ/dokdo/frame"
)

// Source is where a feature table comes from: a Handle, a Path or a Table.
type Source interface {
	isSource()
}

// Handle is an artifact already in memory.
type Handle struct {
	Artifact *Artifact
}

// Path names a .qza archive or a delimited table file.
type Path string

// Table is a samples × features table used as is.
type Table struct {
	Frame *frame.Frame
}

func (Handle) isSource() {}
func (Path) isSource()   {}
func (Table) isSource()  {}

// FeatureTable resolves a source to a samples × features table. The result
// never aliases the caller's data.
func FeatureTable(src Source) (*frame.Frame, error) {
	switch s := src.(type) {
	case Handle:
		if s.Artifact == nil {
			return nil, fmt.Errorf("%w: nil artifact", ErrUnsupportedArtifactType)
		}
		return s.Artifact.View()
	case Path:
		return loadPath(string(s))
	case Table:
		if s.Frame == nil {
			return nil, fmt.Errorf("%w: nil table", ErrUnsupportedArtifactType)
		}
		return s.Frame.Copy(), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedArtifactType, src)
}

func loadPath(fileName string) (*frame.Frame, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".qza") {
		a, err := Load(fileName)
		if err != nil {
			return nil, err
		}
		return a.View()
	}
	return frame.ReadFile(fileName)
}

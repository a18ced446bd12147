package jobconfig

import (
	"fmt"
	"strings"

	cerror "github.com/pingcap-inc/sql2dw/pkg/errors"
)

// TableID identifies a destination table. ProjectID is empty when the
// identifier was given as "dataset.table".
type TableID struct {
	ProjectID string
	DatasetID string
	TableID   string
}

// ParseTableID parses "project.dataset.table" or "dataset.table".
// The project part may itself contain dots, e.g. domain-scoped projects like
// "example.com:project.dataset.table".
func ParseTableID(s string) (*TableID, error) {
	tableIdx := strings.LastIndex(s, ".")
	if tableIdx < 0 {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("destination %q is not a fully-qualified table", s))
	}
	id := &TableID{TableID: s[tableIdx+1:]}
	rest := s[:tableIdx]
	if datasetIdx := strings.LastIndex(rest, "."); datasetIdx >= 0 {
		id.ProjectID = rest[:datasetIdx]
		id.DatasetID = rest[datasetIdx+1:]
		if id.ProjectID == "" {
			return nil, cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("destination %q has an empty project", s))
		}
	} else {
		id.DatasetID = rest
	}
	if id.DatasetID == "" || id.TableID == "" {
		return nil, cerror.ErrInvalidArgument.GenWithStackByArgs(fmt.Sprintf("destination %q has an empty dataset or table", s))
	}
	return id, nil
}

func (id *TableID) String() string {
	if id.ProjectID == "" {
		return fmt.Sprintf("%s.%s", id.DatasetID, id.TableID)
	}
	return fmt.Sprintf("%s.%s.%s", id.ProjectID, id.DatasetID, id.TableID)
}

package backup

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal/core/datamodel"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	snapshotCategory = "snapshots"
	backupVersion    = "1"
)

// excludedTables never leave the database: sessions carry live bearer tokens.
var excludedTables = map[string]bool{"sessions": true}

type tableNamer interface {
	TableName() string
}

// BusinessTables lists the dumped tables in foreign-key order.
func BusinessTables() []string {
	var out []string
	for _, m := range datamodel.Models() {
		named, ok := m.(tableNamer)
		if !ok || excludedTables[named.TableName()] {
			continue
		}
		out = append(out, named.TableName())
	}
	return out
}

type Row map[string]interface{}

type TableInfo struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

type TableDump struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type FullBackup struct {
	Version   string           `json:"version"`
	CreatedAt time.Time        `json:"createdAt"`
	Tables    map[string][]Row `json:"tables"`
}

type SnapshotResult struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	Tables    int       `json:"tables"`
	CreatedAt time.Time `json:"createdAt"`
}

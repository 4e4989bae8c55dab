// CLAUDE:SUMMARY CSV import of case records: legacy encodings, header-name column mapping, optional HTTP download, batched inserts.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hazyhaar/socialconnect-core/pkg/store"
	"github.com/hazyhaar/socialconnect-core/pkg/textnorm"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Writer is the store side of an import.
type Writer interface {
	CreateUsers(ctx context.Context, users []*store.User) error
}

// Format describes the CSV layout.
type Format struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
	HasHeader bool   `yaml:"has_header"`
}

// DefaultFormat is a UTF-8, comma-separated file with a header row.
func DefaultFormat() Format {
	return Format{Delimiter: ",", Encoding: "utf-8", HasHeader: true}
}

// Stats counts what an import did.
type Stats struct {
	Rows     int `json:"rows"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Columns in positional order, used when the file has no header.
const (
	colNom = iota
	colPrenom
	colSecteur
	colRue
	colNotes
	colRemarques
	colInfo
	colService
	colAnnee
	colNumero
	numColumns
)

// headerAliases maps normalized header names to columns.
var headerAliases = map[string]int{
	"nom":                    colNom,
	"prenom":                 colPrenom,
	"secteur":                colSecteur,
	"rue":                    colRue,
	"adresse":                colRue,
	"adresse rue":            colRue,
	"adresse_rue":            colRue,
	"street":                 colRue,
	"notes":                  colNotes,
	"notes generales":        colNotes,
	"notes_generales":        colNotes,
	"remarques":              colRemarques,
	"information importante": colInfo,
	"information_importante": colInfo,
	"service":                colService,
	"service_id":             colService,
	"annee":                  colAnnee,
	"numero":                 colNumero,
	"n°":                     colNumero,
}

const batchSize = 500

// ImportCSV reads case records from path and creates one user per non-blank
// row. path may be an http(s) URL, downloaded to a temporary file first.
func ImportCSV(ctx context.Context, w Writer, path string, f Format, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		tmp, err := os.CreateTemp("", "socialconnect-import-*.csv")
		if err != nil {
			return Stats{}, fmt.Errorf("create temp file: %w", err)
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		logger.Info("downloading import file", "url", path)
		if err := downloadFile(ctx, path, tmp.Name()); err != nil {
			return Stats{}, err
		}
		path = tmp.Name()
	}

	file, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	stats, err := Import(ctx, w, file, f)
	if err != nil {
		return stats, err
	}
	if stats.Skipped > 0 {
		logger.Warn("blank rows skipped", "count", stats.Skipped, "file", path)
	}
	logger.Info("import done", "rows", stats.Rows, "imported", stats.Imported)
	return stats, nil
}

// Import reads CSV records from r. See ImportCSV.
func Import(ctx context.Context, w Writer, r io.Reader, f Format) (Stats, error) {
	var stats Stats

	if enc := strings.ToLower(f.Encoding); enc != "" && enc != "utf-8" && enc != "utf8" {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return stats, fmt.Errorf("unsupported encoding %q: %w", f.Encoding, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	cr := csv.NewReader(r)
	if f.Delimiter != "" {
		cr.Comma = []rune(f.Delimiter)[0]
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	index := positional()
	if f.HasHeader {
		header, err := cr.Read()
		if err != nil {
			return stats, fmt.Errorf("read header: %w", err)
		}
		index = resolveColumns(header)
	}

	batch := make([]*store.User, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.CreateUsers(ctx, batch); err != nil {
			return fmt.Errorf("import batch: %w", err)
		}
		stats.Imported += len(batch)
		batch = make([]*store.User, 0, batchSize)
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		u := rowToUser(record, index)
		if u == nil {
			stats.Skipped++
			continue
		}
		batch = append(batch, u)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// positional maps column i to field i.
func positional() [numColumns]int {
	var idx [numColumns]int
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// resolveColumns maps each known column to its position in header, -1 when
// absent.
func resolveColumns(header []string) [numColumns]int {
	var idx [numColumns]int
	for i := range idx {
		idx[i] = -1
	}
	for pos, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		col, ok := headerAliases[textnorm.Normalize(h)]
		if ok && idx[col] == -1 {
			idx[col] = pos
		}
	}
	return idx
}

// rowToUser returns nil for a row whose mapped fields are all blank.
func rowToUser(record []string, index [numColumns]int) *store.User {
	field := func(col int) string {
		pos := index[col]
		if pos < 0 || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	blank := true
	for col := 0; col < numColumns; col++ {
		if field(col) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil
	}

	rue := field(colRue)
	if num := field(colNumero); num != "" {
		rue = strings.TrimSpace(rue + " " + num)
	}
	annee, err := strconv.Atoi(field(colAnnee))
	if err != nil {
		annee = 0
	}
	return &store.User{
		Nom:                   field(colNom),
		Prenom:                field(colPrenom),
		Secteur:               field(colSecteur),
		AdresseRue:            rue,
		NotesGenerales:        field(colNotes),
		Remarques:             field(colRemarques),
		InformationImportante: field(colInfo),
		ServiceID:             field(colService),
		Annee:                 annee,
	}
}

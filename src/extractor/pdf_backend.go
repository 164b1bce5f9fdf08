package extractor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/username/fundfolio/backend/src/logger"
)

// cellGap is the horizontal distance (in PDF points) between text pieces
// that separates two table cells rather than two words of one cell.
const cellGap = 12.0

// minTableCells is the cell count below which a reconstructed row is treated
// as running text instead of a table row.
const minTableCells = 3

// extractStructured reads the statement with the structured PDF backend,
// producing page-ordered text plus independently-bounded tables rebuilt from
// text coordinates. The library can panic on malformed files, so the whole
// pass runs under a recover guard.
func extractStructured(ctx context.Context, path string, password string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf backend crashed: %v", r)
		}
	}()

	f, reader, err := openReader(path, password)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, errors.New("statement has no pages")
	}

	doc = &Document{Backend: BackendStructured}
	var text strings.Builder
	for i := 1; i <= numPages; i++ {
		if ctx.Err() != nil {
			logger.L.Warn("Extraction deadline reached, returning partial content",
				"pagesExtracted", i-1, "pagesTotal", numPages)
			break
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows := reconstructRows(page.Content().Text)
		if len(rows) == 0 {
			continue
		}
		text.WriteString(fmt.Sprintf("\n--- PAGE %d ---\n", i))
		for _, row := range rows {
			text.WriteString(strings.Join(row, " "))
			text.WriteByte('\n')
		}
		doc.Tables = append(doc.Tables, groupTables(rows)...)
	}

	doc.Text = text.String()
	return doc, nil
}

// extractPlainText is the text-only fallback path. No table reconstruction;
// whatever the plain-text extractor produces is handed to the line-oriented
// parsers as-is.
func extractPlainText(ctx context.Context, path string, password string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf backend crashed: %v", r)
		}
	}()

	f, reader, err := openReader(path, password)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if ctx.Err() != nil {
			break
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fontNames := page.Fonts()
		fonts := make(map[string]*pdf.Font, len(fontNames))
		for _, name := range fontNames {
			font := page.Font(name)
			fonts[name] = &font
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n--- PAGE %d ---\n", i))
		sb.WriteString(pageText)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// openReader opens the statement, decrypting with the supplied password if
// one was given. An incorrect password is logged and the file is retried
// without decryption, because many issuers send unencrypted statements to
// users who still pass their usual password along.
func openReader(path string, password string) (*os.File, *pdf.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open statement: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat statement: %w", err)
	}

	if password != "" {
		tried := false
		reader, err := pdf.NewReaderEncrypted(f, fi.Size(), func() string {
			if tried {
				return "" // stop the password loop after one attempt
			}
			tried = true
			return password
		})
		if err == nil {
			return f, reader, nil
		}
		logger.L.Warn("Statement decryption failed, password may be incorrect; retrying without password",
			"path", path, "error", err)
	}

	reader, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to read statement: %w", err)
	}
	return f, reader, nil
}

// reconstructRows rebuilds visual rows from positioned text pieces: group by
// Y coordinate, sort left to right, and split cells on large horizontal gaps.
func reconstructRows(texts []pdf.Text) [][]string {
	type piece struct {
		x, w float64
		s    string
	}
	rowMap := make(map[int][]piece)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], piece{x: t.X, w: t.W, s: t.S})
	}

	// PDF Y runs bottom-to-top, so visual order is descending Y.
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var rows [][]string
	for _, y := range yKeys {
		pieces := rowMap[y]
		sort.Slice(pieces, func(a, b int) bool { return pieces[a].x < pieces[b].x })

		var cells []string
		var cell strings.Builder
		prevEnd := math.Inf(-1)
		for _, p := range pieces {
			if cell.Len() > 0 && p.x-prevEnd > cellGap {
				cells = append(cells, strings.TrimSpace(cell.String()))
				cell.Reset()
			}
			cell.WriteString(p.s)
			prevEnd = p.x + p.w
		}
		if cell.Len() > 0 {
			cells = append(cells, strings.TrimSpace(cell.String()))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// groupTables collects consecutive multi-cell rows into independently-bounded
// tables. A run ends when a row degenerates back into running text. Header
// classification happens downstream; here a table only needs boundaries.
func groupTables(rows [][]string) [][][]string {
	var tables [][][]string
	var current [][]string
	flush := func() {
		if len(current) >= 2 { // header + at least one data row
			tables = append(tables, current)
		}
		current = nil
	}
	for _, row := range rows {
		if len(row) >= minTableCells {
			current = append(current, row)
			continue
		}
		flush()
	}
	flush()
	return tables
}

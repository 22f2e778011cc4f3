package portal

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TableKind is the closed set of tables the portal knows how to summarize.
// Any other name is a GenericTable.
type TableKind int

const (
	GenericTable TableKind = iota
	InvestorData
	PortfolioAllocation
	ProductMarketData
	MasterAllocationModel
	AIRebalancing
)

var tableNames = []struct {
	kind  TableKind
	name  string
	title string
}{
	{InvestorData, "investor-data", "Investor Reference Data - Client Profiles & Preferences"},
	{PortfolioAllocation, "portfolio-allocation", "Portfolio Allocation - Investment Distribution"},
	{ProductMarketData, "product-market-data", "Product Market Data - Investment Products"},
	{MasterAllocationModel, "master-allocation-model", "Master Allocation Models - Investment Strategies"},
	{AIRebalancing, "ai-rebalancing", "AI-Powered Portfolio Rebalancing - Client Analysis"},
}

// ParseTableKind maps a table name to its kind.
func ParseTableKind(name string) TableKind {
	for _, t := range tableNames {
		if t.name == name {
			return t.kind
		}
	}
	return GenericTable
}

// TableNames lists the names of the known tables.
func TableNames() []string {
	names := make([]string, len(tableNames))
	for i, t := range tableNames {
		names[i] = t.name
	}
	return names
}

func (k TableKind) String() string {
	for _, t := range tableNames {
		if t.kind == k {
			return t.name
		}
	}
	return "generic"
}

// TableTitle returns the heading of the table named name.
func TableTitle(name string) string {
	k := ParseTableKind(name)
	for _, t := range tableNames {
		if t.kind == k {
			return t.title
		}
	}
	return TitleCase(name)
}

// TableDataset is the last fetched row set of a table, with its search
// filter applied.
type TableDataset struct {
	Name string
	Kind TableKind

	rows     []Row // last full fetch, never mutated
	query    string
	filtered []Row
}

// NewTableDataset wraps a freshly fetched row set.
func NewTableDataset(name string, rows []Row) *TableDataset {
	d := &TableDataset{Name: name, Kind: ParseTableKind(name), rows: rows}
	d.Filter("")
	return d
}

// Rows returns the full row set of the last fetch.
func (d *TableDataset) Rows() []Row { return d.rows }

// Visible returns the rows matching the current query.
func (d *TableDataset) Visible() []Row { return d.filtered }

// Query returns the current search term.
func (d *TableDataset) Query() string { return d.query }

// Title returns the heading of the dataset.
func (d *TableDataset) Title() string { return TableTitle(d.Name) }

// RecordCount is the "N record(s)" line of the visible rows.
func (d *TableDataset) RecordCount() string {
	return fmt.Sprintf("%s record(s)", FormatCount(len(d.filtered)))
}

// Filter keeps the rows where any value contains term, ignoring case. A blank
// term restores the last fetch, in the same order.
func (d *TableDataset) Filter(term string) []Row {
	d.query = term
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		d.filtered = append([]Row(nil), d.rows...)
		return d.filtered
	}
	d.filtered = d.filtered[:0:0]
	for _, r := range d.rows {
		if r.Contains(t) {
			d.filtered = append(d.filtered, r)
		}
	}
	return d.filtered
}

// Headers returns the column keys, taken from the first visible row.
func (d *TableDataset) Headers() []string {
	if len(d.filtered) == 0 {
		return nil
	}
	return d.filtered[0].Keys()
}

// ExportFilename is the download name of the CSV export made on day.
func (d *TableDataset) ExportFilename(day time.Time) string {
	return fmt.Sprintf("%s-%s.csv", d.Name, day.Format("2006-01-02"))
}

// WriteCSV writes the visible rows: a header line of formatted column
// names, then one line per row, every field wrapped in double quotes.
func (d *TableDataset) WriteCSV(w io.Writer) error {
	if len(d.filtered) == 0 {
		return fmt.Errorf("no data to export")
	}
	keys := d.Headers()
	header := make([]string, len(keys))
	for i, k := range keys {
		header[i] = FormatHeader(k)
	}
	lines := []string{csvLine(header)}
	for _, r := range d.filtered {
		fields := make([]string, len(keys))
		for i, k := range keys {
			fields[i] = r.String(k)
		}
		lines = append(lines, csvLine(fields))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// csvLine quotes every field, doubling embedded quotes.
func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

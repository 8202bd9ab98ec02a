// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"dataio/cli/internal/dataio"
	"dataio/cli/internal/rdata"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// previewRows caps the rows of each table shown in the table format.
const previewRows = 5

func validFormat(f string) bool {
	switch f {
	case "table", "yaml", "json":
		return true
	}
	return false
}

// renderSummary writes sum to w in the requested format.
func renderSummary(w io.Writer, sum *dataio.Summary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sum); err != nil {
			return err
		}
		return enc.Close()
	}
	return renderTables(w, sum)
}

func renderTables(w io.Writer, sum *dataio.Summary) error {
	fmt.Fprintln(w, pterm.DefaultSection.Sprintf("%s", sum.Example))
	fmt.Fprintf(w, "Endpoint: %s\n", sum.Endpoint)
	if sum.Project != "" {
		fmt.Fprintf(w, "Project:  %s\n", sum.Project)
	}
	fmt.Fprintf(w, "Console:  %d bytes\n\n", sum.ConsoleBytes)

	if len(sum.Objects) > 0 {
		data := pterm.TableData{{"Object", "Kind", "Length"}}
		for _, o := range sum.Objects {
			data = append(data, []string{o.Name, o.Kind, strconv.Itoa(o.Length)})
		}
		if err := printTable(w, data); err != nil {
			return err
		}
	}
	if !sum.Outputs.OK() {
		fmt.Fprintln(w, pterm.Warning.Sprintf("missing outputs %v, unexpected outputs %v", sum.Outputs.Missing, sum.Outputs.Unexpected))
	}

	if len(sum.Files) > 0 {
		data := pterm.TableData{{"File", "Category", "Bytes", "Saved", "Status"}}
		for _, f := range sum.Files {
			status := "ok"
			switch {
			case f.Error != "":
				status = f.Error
			case f.Deleted:
				status = "deleted"
			}
			data = append(data, []string{f.Name, f.Category, strconv.FormatInt(f.Bytes, 10), f.Path, status})
		}
		if err := printTable(w, data); err != nil {
			return err
		}
		fmt.Fprintf(w, "Downloaded: %d bytes\n\n", sum.TotalBytes())
	}

	names := make([]string, 0, len(sum.Tables))
	for n := range sum.Tables {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		t := sum.Tables[n]
		fmt.Fprintf(w, "%s (%d rows, %d columns)\n", n, len(t.Rows), t.Width())
		if err := printTable(w, preview(t)); err != nil {
			return err
		}
	}

	if len(sum.Exports) > 0 {
		data := pterm.TableData{{"Exported", "Rows", "Status"}}
		for _, e := range sum.Exports {
			status := "ok"
			if e.Error != "" {
				status = e.Error
			}
			data = append(data, []string{e.Object, strconv.FormatInt(e.Rows, 10), status})
		}
		if err := printTable(w, data); err != nil {
			return err
		}
	}
	return nil
}

func printTable(w io.Writer, data pterm.TableData) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n\n", s)
	return err
}

func preview(t *rdata.Table) pterm.TableData {
	data := pterm.TableData{append([]string(nil), t.Columns...)}
	for i, row := range t.Rows {
		if i == previewRows {
			break
		}
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = formatCell(c)
		}
		data = append(data, cells)
	}
	return data
}

func formatCell(c any) string {
	switch v := c.(type) {
	case nil:
		return "NA"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	return fmt.Sprint(c)
}

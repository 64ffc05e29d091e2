package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// PrintTable writes a boxed table with a header row to w.
func PrintTable(w io.Writer, header []string, rows [][]string) error {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	table := pterm.DefaultTable
	table.Boxed = true

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errRenderTable.Wrap(err)
	}

	_, err = fmt.Fprintln(w, str)

	return err
}

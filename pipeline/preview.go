package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// previewEdge is how many head and tail rows a truncated preview keeps at
// most.
const previewEdge = 5

// RenderPreview prints rows as a right-aligned table with a leading row
// index. Tables longer than maxRows show the first and last rows around an
// ellipsis and a size footer, never more than maxRows of them. maxRows of 0
// prints everything.
func RenderPreview(w io.Writer, header []string, rows [][]string, maxRows int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	writeLine := func(index string, cells []string) {
		fmt.Fprintf(tw, "%s\t%s\t\n", index, strings.Join(cells, "\t"))
	}

	writeLine("", header)
	truncated := maxRows > 0 && len(rows) > maxRows
	head, tail := len(rows), 0
	if truncated {
		head = min(previewEdge, (maxRows+1)/2)
		tail = min(previewEdge, maxRows/2)
	}
	for i, row := range rows {
		if truncated && i == head {
			ellipsis := make([]string, len(header))
			for j := range ellipsis {
				ellipsis[j] = "..."
			}
			writeLine("..", ellipsis)
		}
		if i >= head && i < len(rows)-tail {
			continue
		}
		writeLine(strconv.Itoa(i), row)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if truncated {
		if _, err := fmt.Fprintf(w, "\n[%d rows x %d columns]\n", len(rows), len(header)); err != nil {
			return err
		}
	}
	return nil
}

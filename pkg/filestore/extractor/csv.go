// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// extractCSV renders CSV content as an aligned text table: the header row,
// then each data row prefixed by its zero-based index.
func extractCSV(content []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable field counts

	var records [][]string
	width := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse CSV: %w", err)
		}
		if len(record) > width {
			width = len(record)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return "", errors.New("no columns to parse from file")
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for i, record := range records {
		cells := make([]string, width)
		copy(cells, record)
		index := ""
		if i > 0 {
			index = strconv.Itoa(i - 1)
		}
		fmt.Fprintf(tw, "%s\t%s\n", index, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n"), nil
}

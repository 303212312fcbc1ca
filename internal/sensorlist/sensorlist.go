// Package sensorlist writes the column names of an exported log to a text file.
package sensorlist

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
	"github.com/user/bimmer_log_analyzer_go/internal/parser"
)

// Names reads the header row of the CSV file at csvPath and returns each
// field with surrounding whitespace removed, in source order.
func Names(csvPath string) ([]string, error) {
	header, err := parser.ReadHeader(csvPath)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(header))
	for i, col := range header {
		names[i] = strings.TrimSpace(col)
	}
	return names, nil
}

// Write lists the header names of csvPath in txtPath, one per line,
// replacing any previous content. Nothing is written if the header
// cannot be read.
func Write(csvPath, txtPath string) ([]string, error) {
	names, err := Names(csvPath)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(txtPath)
	if err != nil {
		return nil, apperr.IO("create", txtPath, err)
	}
	if err := WriteTo(out, names); err != nil {
		out.Close()
		return nil, apperr.IO("write", txtPath, err)
	}
	if err := out.Close(); err != nil {
		return nil, apperr.IO("close", txtPath, err)
	}
	return names, nil
}

// WriteTo writes names to w, each followed by a newline.
func WriteTo(w io.Writer, names []string) error {
	bw := bufio.NewWriter(w)
	for _, name := range names {
		if _, err := bw.WriteString(name + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

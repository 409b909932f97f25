package symbols

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"

	"finboard/internal/snapshot"
)

// Entry is one row of the symbol list file.
type Entry struct {
	Code string `csv:"Kod"`
	Name string `csv:"Ad"`
}

// ErrBadHeader is returned for a file that is not a Kod,Ad list.
var ErrBadHeader = errors.New("symbol list: header must contain Kod and Ad")

// Write encodes entries as a Kod,Ad CSV.
func Write(w io.Writer, entries []Entry) error {
	if err := gocsv.Marshal(&entries, w); err != nil {
		return fmt.Errorf("encode symbol list: %w", err)
	}
	return nil
}

// WriteFile writes entries to path, replacing it.
func WriteFile(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a Kod,Ad CSV. Rows with an empty code are dropped.
func Read(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read symbol list: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrBadHeader
		}
		return nil, fmt.Errorf("read symbol list header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !slices.Contains(header, "Kod") || !slices.Contains(header, "Ad") {
		return nil, fmt.Errorf("%w, got %v", ErrBadHeader, header)
	}

	var rows []Entry
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("decode symbol list: %w", err)
	}
	out := rows[:0]
	for _, e := range rows {
		e.Code = strings.TrimSpace(e.Code)
		e.Name = strings.TrimSpace(e.Name)
		if e.Code == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadFile reads the list stored at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbol list: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// FileLoader exposes the list at path as a snapshot: code -> name.
func FileLoader(path string) snapshot.Loader {
	return snapshot.Loader{
		Name: "symbols:file:" + path,
		Load: func(context.Context) (map[string]string, error) {
			entries, err := ReadFile(path)
			if err != nil {
				return nil, err
			}
			out := make(map[string]string, len(entries))
			for _, e := range entries {
				if _, dup := out[e.Code]; !dup {
					out[e.Code] = e.Name
				}
			}
			return out, nil
		},
	}
}

package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Parse reads discovery JSON from a reader and returns a Program.
func Parse(r io.Reader) (*Program, error) {
	var program Program
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&program); err != nil {
		return nil, fmt.Errorf("failed to parse element model: %w", err)
	}
	return &program, nil
}

// ParseBytes parses discovery JSON from a byte slice.
func ParseBytes(data []byte) (*Program, error) {
	var program Program
	if err := json.Unmarshal(data, &program); err != nil {
		return nil, fmt.Errorf("failed to parse element model: %w", err)
	}
	return &program, nil
}

// ParseFile reads and parses the discovery JSON at path.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

package catalog

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format identifies a raw catalog encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatMsgpack
)

// rawRecord is the on-disk catalog shape: string dates and string
// enums, converted to the typed Entity at load time.
type rawRecord struct {
	ID             string   `json:"id" msgpack:"id"`
	Name           string   `json:"name" msgpack:"name"`
	Aliases        []string `json:"aliases,omitempty" msgpack:"aliases,omitempty"`
	RegionalNames  []string `json:"regionalNames,omitempty" msgpack:"regionalNames,omitempty"`
	ScientificName string   `json:"scientificName,omitempty" msgpack:"scientificName,omitempty"`
	Category       string   `json:"category" msgpack:"category"`
	Seasons        []string `json:"seasons,omitempty" msgpack:"seasons,omitempty"`
	Habitats       []string `json:"habitats,omitempty" msgpack:"habitats,omitempty"`
	Popularity     int      `json:"popularity" msgpack:"popularity"`
	Source         string   `json:"source,omitempty" msgpack:"source,omitempty"`
	CreatedAt      string   `json:"createdAt,omitempty" msgpack:"createdAt,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty" msgpack:"updatedAt,omitempty"`
}

// DetectFormat picks a decoder from the file extension, falling back to
// sniffing the payload: JSON catalogs always open with an array.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".msgpack", ".mp", ".bin":
		return FormatMsgpack
	}
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return FormatJSON
		default:
			return FormatMsgpack
		}
	}
	return FormatUnknown
}

func decodeRecords(data []byte, format Format) ([]rawRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("catalog payload is empty")
	}
	var records []rawRecord
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode msgpack catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog format")
	}
	return records, nil
}

// CompileSnapshot re-encodes a JSON catalog into the msgpack snapshot
// format for faster startup.
func CompileSnapshot(jsonData []byte) ([]byte, error) {
	records, err := decodeRecords(jsonData, FormatJSON)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(records)
}

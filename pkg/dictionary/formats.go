package dictionary

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileFormat identifies how a persisted index is stored.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // word,signature lines
	FormatBolt               // bbolt database
)

// FormatInfo describes a persisted index format.
type FormatInfo struct {
	Format      FileFormat
	Name        string
	Description string
	Extensions  []string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Name:        "text",
		Description: "Plain text word,signature list",
		Extensions:  []string{".txt", ".csv"},
	},
	FormatBolt: {
		Format:      FormatBolt,
		Name:        "bolt",
		Description: "bbolt database",
		Extensions:  []string{".db", ".bolt"},
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Name
	}
	return "unknown"
}

// DetectCacheFormat picks a format from the file extension.
func DetectCacheFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, candidate := range info.Extensions {
			if ext == candidate {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect cache format for file %s", filename)
}

// ParseFormat resolves a format by name ("text" or "bolt").
func ParseFormat(name string) (FileFormat, error) {
	for format, info := range supportedFormats {
		if strings.EqualFold(info.Name, name) {
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown cache format %q", name)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

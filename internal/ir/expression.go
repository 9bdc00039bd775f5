package ir

import (
	"fmt"
	"strings"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
)

// Expression is a sealed interface over parsed statements.
// Get is currently the only variant.
type Expression interface {
	expression()
}

// Get fetches one entity from a set of chains and optionally dumps the result.
type Get struct {
	Entity Entity
	Chains []chain.ChainOrRPC
	Dump   *Dump
}

func (*Get) expression() {}

// DumpFormat is the file format of a dump target.
type DumpFormat int

const (
	DumpJSON DumpFormat = iota
	DumpCSV
	DumpParquet
)

var dumpFormatNames = []string{"json", "csv", "parquet"}

func (f DumpFormat) String() string {
	if f < 0 || int(f) >= len(dumpFormatNames) {
		return fmt.Sprintf("format(%d)", int(f))
	}
	return dumpFormatNames[f]
}

// ParseDumpFormat maps a file extension to its format.
func ParseDumpFormat(ext string) (DumpFormat, error) {
	lower := strings.ToLower(strings.TrimPrefix(ext, "."))
	for i, name := range dumpFormatNames {
		if name == lower {
			return DumpFormat(i), nil
		}
	}
	return 0, fmt.Errorf("unsupported dump format %q", ext)
}

// Dump names the artifact a result is persisted to.
type Dump struct {
	Name   string
	Format DumpFormat
}

// ParseDump splits name.ext on the last dot. The target must be a plain
// file name: no directories, no ".." and no NUL bytes.
func ParseDump(target string) (*Dump, error) {
	if strings.ContainsAny(target, "/\\\x00") || strings.HasPrefix(target, ".") {
		return nil, fmt.Errorf("dump target %q must be a file name without directories", target)
	}
	dot := strings.LastIndex(target, ".")
	if dot <= 0 || dot == len(target)-1 {
		return nil, fmt.Errorf("dump target %q must be name.ext", target)
	}
	format, err := ParseDumpFormat(target[dot+1:])
	if err != nil {
		return nil, err
	}
	return &Dump{Name: target[:dot], Format: format}, nil
}

// Filename is the name the artifact is written as.
func (d Dump) Filename() string {
	return d.Name + "." + d.Format.String()
}

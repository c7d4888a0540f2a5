package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thruflo/brigadier/internal/project"
)

// Invocation is a parsed command line.
type Invocation struct {
	Project string
	Task    string
	// Options holds every --key[=value] except help and version.
	Options map[string]interface{}
	Verbose bool
	Help    bool
	Version bool
}

// ParseArgs parses `project [task] [--key[=value] ...]`. Options may appear
// anywhere. Arguments after a lone "--" are positional.
func ParseArgs(args []string) (*Invocation, error) {
	inv := &Invocation{Options: make(map[string]interface{})}
	var positional []string
	flags := true

	for _, arg := range args {
		switch {
		case flags && arg == "--":
			flags = false
		case flags && strings.HasPrefix(arg, "--"):
			key, value := parseOption(arg[2:])
			if key == "" {
				return nil, &UsageError{Message: fmt.Sprintf("invalid argument %s", arg)}
			}
			inv.setOption(key, value)
		case flags && len(arg) > 1 && strings.HasPrefix(arg, "-"):
			for _, short := range arg[1:] {
				if short == 'h' {
					inv.Help = true
					continue
				}
				inv.setOption(string(short), true)
			}
		default:
			positional = append(positional, arg)
		}
	}

	switch len(positional) {
	case 2:
		inv.Task = positional[1]
		fallthrough
	case 1:
		inv.Project = positional[0]
	case 0:
	default:
		return nil, &UsageError{Message: fmt.Sprintf("invalid argument %s", positional[2])}
	}

	return inv, nil
}

func (inv *Invocation) setOption(key string, value interface{}) {
	switch key {
	case "help":
		inv.Help = project.Truthy(value)
		return
	case "version":
		inv.Version = project.Truthy(value)
		return
	case "verbose":
		inv.Verbose = project.Truthy(value)
	}
	inv.Options[key] = value
}

// parseOption splits key[=value]. A bare key is true.
func parseOption(body string) (string, interface{}) {
	key, raw, found := strings.Cut(body, "=")
	if !found {
		return key, true
	}
	return key, decodeValue(raw)
}

// decodeValue decodes raw as a JSON scalar, falling back to the raw string.
func decodeValue(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case nil, bool, float64, string:
		return v
	default:
		return raw
	}
}

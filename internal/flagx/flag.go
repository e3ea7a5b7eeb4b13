// Package flagx lets several configuration layers share one argument list:
// each layer picks out only the flags it owns and parses them with its own
// flag.FlagSet.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the flags named in
// owned (written without dashes, e.g. "a", "config"). Both "-name" and
// "--name" spellings are recognised, as are "-name value" and "-name=value".
// A value is taken from the next argument only when it does not itself start
// with a dash. The returned slice is never nil.
func FilterArgs(args []string, owned ...string) []string {
	set := make(map[string]bool, len(owned))
	for _, o := range owned {
		set[strings.TrimLeft(o, "-")] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, hasValue, ok := flagName(args[i])
		if !ok || !set[name] {
			continue
		}
		out = append(out, args[i])
		if hasValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// flagName splits "-x", "--x" or "--x=v" into its bare name.
func flagName(arg string) (name string, inline bool, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false, false
	}
	name = strings.TrimLeft(arg, "-")
	if name == "" {
		return "", false, false
	}
	if before, _, found := strings.Cut(name, "="); found {
		return before, true, true
	}
	return name, false, true
}

// ConfigPath returns the JSON configuration file given with -c or -config,
// or "" when neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

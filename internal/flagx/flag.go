// Package flagx contains helpers for pre-filtering command-line arguments
// before handing them to a flag.FlagSet.
package flagx

import "strings"

// FilterArgs returns the subset of args that belongs to the allowed flags,
// preserving order. Both "-f value" and "-f=value" forms are recognized. A
// token following an allowed flag is treated as its value unless it starts
// with a dash. Filtering the arguments first lets a component parse its own
// flags without tripping over flags registered elsewhere (test binaries
// included).
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

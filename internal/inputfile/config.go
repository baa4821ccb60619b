package inputfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vk/mpetstudy/internal/params"
)

// WriteConfig renders m as an INI file. Every top-level key must hold a
// mapping; it becomes a [section]. Sections named in order come first, the
// rest follow sorted. Keys inside a section are sorted.
func WriteConfig(w io.Writer, m params.Mapping, order []string) error {
	bw := bufio.NewWriter(w)
	for i, name := range orderedKeys(m, order) {
		section, ok := asMapping(m[name])
		if !ok {
			return fmt.Errorf("config key %q is not a section", name)
		}
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "[%s]\n", name)
		for _, key := range section.Keys() {
			val, err := configValue(section[key])
			if err != nil {
				return fmt.Errorf("section %q key %q: %w", name, key, err)
			}
			fmt.Fprintf(bw, "%s = %s\n", key, val)
		}
	}
	return bw.Flush()
}

func configValue(v any) (string, error) {
	if elems, ok := listElems(v); ok {
		parts := make([]string, len(elems))
		for i, e := range elems {
			s, err := formatScalar(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	}
	return formatScalar(v)
}

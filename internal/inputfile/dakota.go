package inputfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vk/mpetstudy/internal/params"
)

// KeywordsKey holds the bare keywords of a dakota block.
const KeywordsKey = "keywords"

// WriteDakota renders m in dakota's block syntax. Each top-level key is a
// block; its "keywords" list is written as bare keywords, every other key as
// `key = value` with strings single-quoted and lists space-separated.
func WriteDakota(w io.Writer, m params.Mapping, order []string) error {
	bw := bufio.NewWriter(w)
	for i, name := range orderedKeys(m, order) {
		block, ok := asMapping(m[name])
		if !ok {
			return fmt.Errorf("dakota key %q is not a block", name)
		}
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintln(bw, name)

		if kw, ok := block[KeywordsKey]; ok {
			elems, ok := listElems(kw)
			if !ok {
				return fmt.Errorf("block %q: keywords must be a list, got %T", name, kw)
			}
			for _, e := range elems {
				s, err := formatScalar(e)
				if err != nil {
					return fmt.Errorf("block %q keywords: %w", name, err)
				}
				fmt.Fprintf(bw, "  %s\n", s)
			}
		}

		for _, key := range block.Keys() {
			if key == KeywordsKey {
				continue
			}
			val, err := dakotaValue(block[key])
			if err != nil {
				return fmt.Errorf("block %q key %q: %w", name, key, err)
			}
			fmt.Fprintf(bw, "  %s = %s\n", key, val)
		}
	}
	return bw.Flush()
}

func dakotaValue(v any) (string, error) {
	if elems, ok := listElems(v); ok {
		parts := make([]string, len(elems))
		for i, e := range elems {
			s, err := dakotaScalar(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, " "), nil
	}
	return dakotaScalar(v)
}

func dakotaScalar(v any) (string, error) {
	if s, ok := v.(string); ok {
		return "'" + s + "'", nil
	}
	return formatScalar(v)
}

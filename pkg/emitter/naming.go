package emitter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/internal/hashutil"
)

var hashPlaceholder = regexp.MustCompile(`\[(?:content)?hash(?::(\d+))?\]`)

// expandName fills a naming template. Supported placeholders are [name],
// [ext], [hash] and [hash:N]; [contenthash] is accepted as an alias.
func expandName(template, name, ext, fullHash string, hashLength int) string {
	out := hashPlaceholder.ReplaceAllStringFunc(template, func(m string) string {
		n := hashLength
		if sub := hashPlaceholder.FindStringSubmatch(m); sub[1] != "" {
			if v, err := strconv.Atoi(sub[1]); err == nil {
				n = v
			}
		}
		return hashutil.Short(fullHash, n)
	})
	out = strings.ReplaceAll(out, "[name]", name)
	out = strings.ReplaceAll(out, "[ext]", ext)
	return out
}

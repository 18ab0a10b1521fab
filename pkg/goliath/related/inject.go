package related

import (
	"encoding/json"
	"strings"
)

// emptyHook is the assignment generated pages carry before injection.
const emptyHook = "window.__RELATED__ = []"

// Inject writes the selected links into the artifact. When the page
// carries the empty hook assignment it is rewritten in place;
// otherwise a JSON data script is appended before the closing body
// tag so the page's loader can pick it up.
func Inject(artifact string, links []Link) (string, error) {
	if links == nil {
		links = []Link{}
	}
	payload, err := json.Marshal(links)
	if err != nil {
		return "", err
	}

	if strings.Contains(artifact, emptyHook) {
		return strings.Replace(artifact, emptyHook, "window.__RELATED__ = "+string(payload), 1), nil
	}

	script := `<script id="related-data" type="application/json">` + string(payload) + `</script>`
	if idx := strings.Index(strings.ToLower(artifact), "</body>"); idx >= 0 {
		return artifact[:idx] + script + "\n" + artifact[idx:], nil
	}
	return artifact + "\n" + script, nil
}

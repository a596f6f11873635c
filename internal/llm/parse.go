package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taxlens/invoice-analyzer/internal/common"
)

// DecodeReply pulls a JSON object out of a model reply. Models wrap
// JSON in prose or markdown fences often enough that three passes are
// worth it: the outermost {...} slice, the reply verbatim, then the
// reply with fences stripped.
func DecodeReply(reply string) (map[string]any, error) {
	if sliced, ok := sliceJSONObject(reply); ok {
		if m, err := decodeObject(sliced); err == nil {
			return m, nil
		}
	}

	if m, err := decodeObject(reply); err == nil {
		return m, nil
	}

	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(reply))
	if m, err := decodeObject(cleaned); err == nil {
		return m, nil
	}

	return nil, fmt.Errorf("%w: no JSON object in model reply", common.ErrParseFailure)
}

// sliceJSONObject returns the substring between the first '{' and the
// last '}' in raw.
func sliceJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], true
	}
	return "", false
}

func decodeObject(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("json null")
	}
	return m, nil
}

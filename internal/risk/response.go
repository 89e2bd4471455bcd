package risk

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Alias resolution order for upstream response fields. The upstream schema
// has drifted before; tolerating the old names keeps the gateway working
// across upstream deploys.
var (
	tierAliases   = []string{"tier", "risk"}
	scoreAliases  = []string{"score", "risk_score"}
	reasonAliases = []string{"reason", "message"}
)

// NormalizeResponse clamps a loosely typed upstream JSON object into a
// Decision. Unknown tiers collapse to medium, scores clamp to [0,100], and a
// missing reason becomes the empty string.
func NormalizeResponse(body map[string]any) Decision {
	d := Decision{Tier: TierMedium, Score: 50}

	for _, k := range tierAliases {
		if s, ok := body[k].(string); ok && s != "" {
			d.Tier = Tier(strings.ToLower(strings.TrimSpace(s)))
			break
		}
	}
	if !ValidTier(d.Tier) {
		d.Tier = TierMedium
	}

	for _, k := range scoreAliases {
		if n, ok := numberValue(body[k]); ok {
			d.Score = n
			break
		}
	}
	if d.Score < 0 {
		d.Score = 0
	}
	if d.Score > 100 {
		d.Score = 100
	}

	for _, k := range reasonAliases {
		if s, ok := body[k].(string); ok {
			d.Reason = s
			break
		}
	}

	return d
}

func numberValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

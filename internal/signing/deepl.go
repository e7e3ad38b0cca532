package signing

import "strings"

// DeepLMethodSpacing picks the "method" key's colon spacing DeepL's web
// JSON-RPC endpoint expects for a given request id (spec §4.4): a single
// space before the colon when (id+5)%29==0 or (id+3)%13==0, none otherwise.
// DeepL's web frontend applies the same rule to detect non-browser clients
// that naively round-trip the request through a standard JSON encoder.
func DeepLMethodSpacing(id int) bool {
	return (id+5)%29 == 0 || (id+3)%13 == 0
}

// RenderDeepLMethodField renders the `"method": "..."` field literal with
// the spacing DeepLMethodSpacing selects for id.
func RenderDeepLMethodField(id int, method string) string {
	if DeepLMethodSpacing(id) {
		return `"method" : "` + method + `"`
	}
	return `"method": "` + method + `"`
}

// DeepLTimestamp aligns a timestamp (in epoch milliseconds) to the
// 'i'-count of the source text, per spec §4.4: c = count('i')+1; if c>1,
// send now - (now mod c) + c, otherwise now unmodified.
func DeepLTimestamp(nowMillis int64, text string) int64 {
	c := int64(strings.Count(text, "i")) + 1
	if c <= 1 {
		return nowMillis
	}
	return nowMillis - (nowMillis % c) + c
}

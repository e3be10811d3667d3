package scrape

import (
	"bytes"
	"net/http"
)

// BlockType describes why a fetched page is unusable for classification.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockParked     BlockType = "parked"
)

var (
	cloudflareMarkers = [][]byte{[]byte("checking your browser"), []byte("cf-browser-verification")}
	captchaMarkers    = [][]byte{[]byte("captcha"), []byte("g-recaptcha"), []byte("h-captcha")}
	parkedMarkers     = [][]byte{
		[]byte("this domain is for sale"),
		[]byte("this domain may be for sale"),
		[]byte("buy this domain"),
		[]byte("domain is parked"),
		[]byte("sedoparking"),
		[]byte("parkingcrew"),
	}
)

// DetectBlock inspects a response for anti-bot walls, script-only shells and
// parked-domain pages. Parked pages are reported so a squatted domain never
// reaches the classifier as a company site.
func DetectBlock(resp *http.Response, body []byte) BlockType {
	if resp == nil {
		return BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" ||
			resp.Header.Get("server") == "cloudflare" {
			return BlockCloudflare
		}
	}

	lower := bytes.ToLower(body)

	if containsAny(lower, cloudflareMarkers) ||
		bytes.Contains(lower, []byte("cloudflare")) && bytes.Contains(lower, []byte("challenge")) {
		return BlockCloudflare
	}
	if containsAny(lower, captchaMarkers) {
		return BlockCaptcha
	}
	if containsAny(lower, parkedMarkers) {
		return BlockParked
	}

	// Script-only shell: tiny body with a noscript notice or a meta refresh.
	if len(body) < 2000 {
		if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("javascript")) {
			return BlockJSShell
		}
		if bytes.Contains(lower, []byte(`meta http-equiv="refresh"`)) {
			return BlockJSShell
		}
	}

	return BlockNone
}

func containsAny(haystack []byte, needles [][]byte) bool {
	for _, n := range needles {
		if bytes.Contains(haystack, n) {
			return true
		}
	}
	return false
}

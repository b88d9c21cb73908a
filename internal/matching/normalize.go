package matching

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

var legalSuffixes = map[string]struct{}{
	"inc": {}, "incorporated": {}, "corp": {}, "corporation": {}, "llc": {},
	"ltd": {}, "limited": {}, "co": {}, "company": {}, "gmbh": {},
	"technologies": {}, "technology": {}, "tech": {}, "labs": {},
	"group": {}, "holdings": {}, "solutions": {}, "software": {},
}

// locationAliases maps common US state/city abbreviations to their full
// names so "Cupertino, CA" and "Cupertino, California" tokenize identically.
var locationAliases = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut",
	"fl": "florida", "ga": "georgia", "il": "illinois", "in": "indiana",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota",
	"nc": "north carolina", "nj": "new jersey", "nv": "nevada",
	"ny": "new york", "oh": "ohio", "or": "oregon", "pa": "pennsylvania",
	"tx": "texas", "ut": "utah", "va": "virginia", "wa": "washington",
	"wi": "wisconsin", "dc": "district of columbia",
	"sf": "san francisco", "nyc": "new york", "la": "los angeles",
	"uk": "united kingdom", "usa": "united states", "us": "united states",
	"wfh": "remote", "anywhere": "remote",
}

var droppedQueryParams = []string{"ref", "source", "src", "gh_src"}

// NormalizeURL canonicalizes a posting URL for exact-match comparison:
// lowercased scheme and host, default ports and trailing slash stripped,
// tracking query parameters removed. Returns "" when the URL is empty or
// unparseable so callers never treat garbage as a match.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Host = strings.TrimSuffix(u.Host, ":80")
	u.Host = strings.TrimSuffix(u.Host, ":443")
	u.Host = strings.TrimPrefix(u.Host, "www.")
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""

	query := u.Query()
	for key := range query {
		if strings.HasPrefix(key, "utm_") || lo.Contains(droppedQueryParams, key) {
			query.Del(key)
		}
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// NormalizeText lowercases free text and strips punctuation, for
// word-overlap comparisons over descriptions.
func NormalizeText(text string) string {
	return squash(text)
}

// NormalizeTitle lowercases and strips punctuation, leaving single-spaced
// words. Seniority variants ("Sr" vs "Senior") are left to the metric.
func NormalizeTitle(title string) string {
	return squash(title)
}

// NormalizeCompany additionally drops legal-suffix noise such as
// "Inc" or "Technologies" so "Apple" and "Apple Inc" compare equal.
func NormalizeCompany(company string) string {
	tokens := strings.Fields(squash(company))
	kept := lo.Filter(tokens, func(token string, _ int) bool {
		_, isSuffix := legalSuffixes[token]
		return !isSuffix
	})
	if len(kept) == 0 {
		// the whole name consisted of "suffix" words, e.g. "Tech Co"
		kept = tokens
	}
	return strings.Join(kept, " ")
}

// NormalizeLocation expands known abbreviations token by token.
func NormalizeLocation(location string) string {
	tokens := strings.Fields(squash(location))
	expanded := lo.Map(tokens, func(token string, _ int) string {
		if full, ok := locationAliases[token]; ok {
			return full
		}
		return token
	})
	return strings.Join(expanded, " ")
}

// Tokens splits an already-normalized string into unique sorted words.
func Tokens(normalized string) []string {
	tokens := lo.Uniq(strings.Fields(normalized))
	sort.Strings(tokens)
	return tokens
}

func squash(s string) string {
	s = nonAlphaNum.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

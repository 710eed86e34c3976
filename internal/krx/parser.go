package krx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"krx-supply-oscillator/internal/domain"
)

// dataKeys are the field names the data-bearing array may live under,
// in precedence order: OutBlock_1 for most standard statistics, block1 for
// derivative statistics, output for listing-style reports.
var dataKeys = [...]string{"OutBlock_1", "block1", "output"}

// parseRows extracts the record array from a report body. A body with none
// of the known data keys is an empty trading day, not an error; a body that
// is not valid JSON is a hard DecodeError.
func parseRows(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		snippet := string(body)
		if len(snippet) > 120 {
			snippet = snippet[:120]
		}
		return nil, &domain.DecodeError{Raw: snippet, Cause: errors.New("response is not valid JSON")}
	}
	root := gjson.ParseBytes(body)
	for _, key := range dataKeys {
		block := root.Get(key)
		if block.IsArray() {
			var rows []gjson.Result
			block.ForEach(func(_, row gjson.Result) bool {
				if row.IsObject() {
					rows = append(rows, row)
				}
				return true
			})
			return rows, nil
		}
	}
	return nil, nil
}

// cleanNumeric strips the thousands separators KRX embeds in every numeric
// field ("82,200" -> "82200"). Returns ok=false for the absent markers: the
// empty string and the bare "-" placeholder. A lone minus sign is a
// placeholder, "-1,500" is a negative number.
func cleanNumeric(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return "", false
	}
	return strings.ReplaceAll(s, ",", ""), true
}

// optInt decodes a nullable numeric field: absent markers report ok=false
// rather than zero, so callers can tell "no value" from a true zero.
func optInt(row gjson.Result, key string) (int64, bool) {
	s, ok := cleanNumeric(row.Get(key).String())
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// intOrZero decodes a non-nullable numeric field: absent markers and
// malformed values collapse to zero. Each record decoder picks optInt or
// intOrZero per field explicitly.
func intOrZero(row gjson.Result, key string) int64 {
	n, _ := optInt(row, key)
	return n
}

func floatOrZero(row gjson.Result, key string) float64 {
	s, ok := cleanNumeric(row.Get(key).String())
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func str(row gjson.Result, key string) string {
	return strings.TrimSpace(row.Get(key).String())
}

// Package normalize は取り込み元ごとに揺れる生テキストを正準形へ変換する純関数を提供します。
// スプレッドシート由来のセルは NBSP・全角空白・アクセント付き文字・ロケール依存の
// 日付/数値表記を含むため、ここで吸収してから照合に使用します。
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dateLayouts は日付セルの解釈に試行するレイアウトです。順序が優先度です。
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// diacriticStripper は NFD 分解 → 結合文字の除去 → NFC 再結合の変換器を返します。
// transform.Chain は内部バッファを持ち並行利用できないため、呼び出しごとに構築します。
func diacriticStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Text は前後の空白を除去します。NBSP や全角空白も空白として扱い、
// 空入力には空文字列を返します。
func Text(raw string) string {
	return strings.TrimFunc(raw, unicode.IsSpace)
}

// EmailLocal はメールアドレス用の正準形を返します。
// ダイアクリティカルマークを除去し(NFD 分解 → 結合文字の除去 → NFC 再結合)、
// NBSP を含むすべての空白を取り除いたうえで小文字化します。冪等です。
func EmailLocal(raw string) string {
	stripped, _, err := transform.String(diacriticStripper(), raw)
	if err != nil {
		stripped = raw
	}

	stripped = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, stripped)

	return strings.ToLower(stripped)
}

// ParseDate は日付セルを解釈し UTC に正規化して返します。
// 解釈できない場合は行を失敗させず fallback を返します。
func ParseDate(raw string, fallback time.Time) time.Time {
	trimmed := Text(raw)
	if trimmed == "" {
		return fallback
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}

	return fallback
}

// ParseDecimal は数値セルを解釈します。桁区切りと小数点のカンマ表記を許容し、
// 解釈できない場合は fallback を返します。負数は拒否しません。
func ParseDecimal(raw string, fallback float64) float64 {
	trimmed := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if trimmed == "" {
		return fallback
	}

	// "1.234,56" のようにカンマが小数点の表記を "1234.56" へ揃える。
	if strings.Contains(trimmed, ",") {
		if strings.Contains(trimmed, ".") && strings.LastIndex(trimmed, ".") > strings.LastIndex(trimmed, ",") {
			trimmed = strings.ReplaceAll(trimmed, ",", "")
		} else {
			trimmed = strings.ReplaceAll(trimmed, ".", "")
			trimmed = strings.Replace(trimmed, ",", ".", 1)
		}
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return value
}

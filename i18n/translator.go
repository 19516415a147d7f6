package i18n

import "sync/atomic"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	expected := data["expected"]
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			if expected != "" {
				return "有効な" + expected + "ではありません"
			}
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "unknown_key":
			return "未知のフィールドです"
		case "null_not_allowed":
			return "null は許可されていません"
		case "invalid_format":
			return "形式が不正です"
		case "overflow":
			return "数値が範囲外です"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			if expected != "" {
				return "not a valid " + expected
			}
			return "invalid type"
		case "required":
			return "missing data for required field"
		case "unknown_key":
			return "unknown field"
		case "null_not_allowed":
			return "field may not be null"
		case "invalid_format":
			if expected != "" {
				return "not a valid " + expected
			}
			return "invalid format"
		case "overflow":
			return "number out of range"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

// holder keeps the stored concrete type stable for atomic.Value.
type holder struct{ tr Translator }

var currentTranslator atomic.Value // holder

func init() { currentTranslator.Store(holder{dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator.Store(holder{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	currentTranslator.Store(holder{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Load().(holder).tr.Message(code, data)
}

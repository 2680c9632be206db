package speech

import (
	"strings"

	"github.com/bytedance/sonic"
)

type ErrorDetailKind uint8

const (
	ErrorDetailKindNone ErrorDetailKind = iota
	// ErrorDetailKindStructured means the detail was extracted from a JSON body.
	ErrorDetailKindStructured
	// ErrorDetailKindRaw means the body could not be decoded and is used as is.
	ErrorDetailKindRaw
)

func (this ErrorDetailKind) String() string {
	switch this {
	case ErrorDetailKindNone:
		return "none"
	case ErrorDetailKindStructured:
		return "structured"
	case ErrorDetailKindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

type ErrorDetail struct {
	Kind ErrorDetailKind
	Text string
}

func (this ErrorDetail) IsZero() bool {
	return this.Kind == ErrorDetailKindNone
}

func (this ErrorDetail) String() string {
	return this.Text
}

// DecodeErrorDetail extracts the most helpful error description from the body
// of a failed response. It first tries the "detail" and "message" fields of a
// JSON object and falls back to the raw body.
func DecodeErrorDetail(body []byte) ErrorDetail {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ErrorDetail{}
	}

	if v, ok := decodeStructuredDetail(body); ok {
		return ErrorDetail{ErrorDetailKindStructured, v}
	}

	return ErrorDetail{ErrorDetailKindRaw, trimmed}
}

func decodeStructuredDetail(body []byte) (string, bool) {
	var payload map[string]any
	if err := sonic.Unmarshal(body, &payload); err != nil || payload == nil {
		return "", false
	}

	if v := detailText(payload["detail"]); v != "" {
		return v, true
	}
	if v := detailText(payload["message"]); v != "" {
		return v, true
	}

	plain, err := sonic.MarshalString(payload)
	if err != nil {
		return "", false
	}
	return plain, true
}

func detailText(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(tv)
	case map[string]any:
		if m := detailText(tv["message"]); m != "" {
			return m
		}
	}
	plain, err := sonic.MarshalString(v)
	if err != nil {
		return ""
	}
	return plain
}

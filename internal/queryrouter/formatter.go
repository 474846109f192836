package queryrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"youthunion-chat/internal/lexicon"
)

// maxPromptData bounds the serialized data embedded in a prompt.
const maxPromptData = 12000

// Formatter asks the generative model to phrase retrieved data as an answer.
type Formatter struct {
	generator Generator
}

func NewFormatter(generator Generator) *Formatter {
	return &Formatter{generator: generator}
}

// Format returns the model's text verbatim.
func (f *Formatter) Format(ctx context.Context, intentName string, data interface{}, query string, expressions ...string) (string, error) {
	prompt, err := BuildAnswerPrompt(intentName, data, query, expressions...)
	if err != nil {
		return "", err
	}
	return f.generator.Generate(ctx, prompt)
}

// BuildAnswerPrompt embeds data as indented JSON in the answering instructions.
func BuildAnswerPrompt(intentName string, data interface{}, query string, expressions ...string) (string, error) {
	serialized, err := marshalData(data)
	if err != nil {
		return "", fmt.Errorf("serialize %s data: %w", intentName, err)
	}

	var b strings.Builder
	b.WriteString(lexicon.AssistantContext)
	b.WriteString("\n\nTrả lời câu hỏi sau dựa trên dữ liệu được cung cấp. ")
	b.WriteString("Trình bày tự nhiên, thân thiện, ngắn gọn (tối đa 3 đoạn) và dùng cùng ngôn ngữ với câu hỏi. ")
	b.WriteString("Nếu dữ liệu không đầy đủ, hãy thông báo một cách lịch sự.\n")

	if isCollection(serialized) {
		b.WriteString("Dữ liệu là một danh sách: nêu tổng số mục rồi tóm tắt vài mục đầu tiên (tên, thời gian, địa điểm).\n")
	} else {
		b.WriteString("Dữ liệu là một bản ghi chi tiết: nhấn mạnh tên, thời gian, địa điểm, trạng thái và số người tham gia.\n")
	}
	for _, hint := range expressionHints(expressions) {
		b.WriteString(hint)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nCâu hỏi: %q\n", query)
	fmt.Fprintf(&b, "Ý định: %s\n", intentName)
	b.WriteString("Dữ liệu:\n")
	b.Write(serialized)
	b.WriteString("\n")
	return b.String(), nil
}

func marshalData(data interface{}) ([]byte, error) {
	var out []byte
	if raw, ok := data.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, err
		}
		out = buf.Bytes()
	} else {
		var err error
		out, err = json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, err
		}
	}

	if len(out) > maxPromptData {
		n := maxPromptData
		for n > 0 && !utf8.RuneStart(out[n]) {
			n--
		}
		out = append(out[:n:n], []byte("\n... (đã cắt bớt)")...)
	}
	return out, nil
}

// isCollection reports whether serialized is a JSON array or a paged
// {"results": [...]} object.
func isCollection(serialized []byte) bool {
	trimmed := bytes.TrimSpace(serialized)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '[' {
		return true
	}
	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return false
	}
	return len(bytes.TrimSpace(page.Results)) > 0 && bytes.TrimSpace(page.Results)[0] == '['
}

func expressionHints(expressions []string) []string {
	var hints []string
	for _, name := range expressions {
		switch name {
		case lexicon.ExpressionAskLocation:
			hints = append(hints, "Người dùng hỏi về địa điểm: nêu rõ địa điểm.")
		case lexicon.ExpressionAskTime:
			hints = append(hints, "Người dùng hỏi về thời gian: nêu rõ ngày giờ bắt đầu và kết thúc.")
		case lexicon.ExpressionAskHow:
			hints = append(hints, "Người dùng hỏi cách thực hiện: hướng dẫn từng bước ngắn gọn.")
		}
	}
	return hints
}

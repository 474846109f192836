package lexicon

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssistantContext is the persona given to the generative model.
const AssistantContext = `Bạn là trợ lý ảo của Đoàn trường, hỗ trợ sinh viên và đoàn viên tra cứu thông tin về hoạt động, sự kiện, bài viết và đoàn viên.
Luôn trả lời bằng tiếng Việt có dấu đầy đủ, thân thiện, ngắn gọn và chính xác.
Nếu không có dữ liệu phù hợp, hãy nói rõ và gợi ý người dùng liên hệ Văn phòng Đoàn trường.`

// TrainingPrompt describes the available Data API operations and the worked
// examples, so the model can answer questions the router could not classify.
func (l *Lexicon) TrainingPrompt() string {
	var b strings.Builder

	b.WriteString("Tôi là một trợ lý ảo của Đoàn trường, có thể truy cập các API sau:\n\n")
	for _, def := range l.Intents {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", def.Description, def.APIEndpoint, def.HTTPMethod)
	}

	b.WriteString("\nTôi hiểu câu hỏi kể cả khi:\n")
	b.WriteString("- Viết không dấu (hoat dong thay vì hoạt động)\n")
	b.WriteString("- Sai chính tả (hoạt đông thay vì hoạt động)\n")
	b.WriteString("- Dùng từ viết tắt (hđ thay vì hoạt động, clb thay vì câu lạc bộ)\n")
	b.WriteString("- Câu hỏi không hoàn chỉnh (sự kiện sắp tới?)\n")

	if len(l.Examples) > 0 {
		b.WriteString("\nMột số ví dụ phân tích câu hỏi:\n")
		for _, ex := range l.Examples {
			endpoint := "Không tìm thấy API"
			if def, ok := l.Find(ex.Intent); ok {
				endpoint = def.APIEndpoint
			}
			params, _ := json.Marshal(ex.Params)
			fmt.Fprintf(&b, "Câu hỏi: %q\n  -> API: %s\n  -> Params: %s\n", ex.Query, endpoint, params)
		}
	}

	b.WriteString("\nNếu câu hỏi không liên quan đến dữ liệu hoặc các API có sẵn, tôi cung cấp thông tin chung về Đoàn trường ")
	b.WriteString("hoặc hướng dẫn người dùng liên hệ với các kênh chính thức.\n")
	return b.String()
}

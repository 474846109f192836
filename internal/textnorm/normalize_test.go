package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"accents", "Cho tôi biết các hoạt động sắp tới", "cho toi biet cac hoat dong sap toi"},
		{"stroke d", "Đoàn viên đăng ký", "doan vien dang ky"},
		{"punctuation", "Sự kiện sắp tới?!", "su kien sap toi"},
		{"whitespace", "  hoạt   động\t\nmới  ", "hoat dong moi"},
		{"abbreviation", "ds hđ của CLB", "ds hd cua clb"},
		{"hash id", "hoạt động #42", "hoat dong 42"},
		{"quotes", `"Mùa hè xanh" 'nhé'`, "mua he xanh nhe"},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Cho tôi biêt các hoạt đông sắp tơi",
		"CHI TIẾT HOẠT ĐỘNG SỐ 42",
		"İstanbul - café naïve",
		"Thống kê (báo cáo) tháng này: 100%",
		"tìm hđ ve tinh nguyen ạ",
		"  ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_AccentInsensitive(t *testing.T) {
	pairs := [][2]string{
		{"hoạt động", "hoat dong"},
		{"hoạt đông", "hoat dong"},
		{"Sự Kiện", "su kien"},
		{"đoàn viên", "doan vien"},
		{"thống kê", "thong ke"},
		{"Tình nguyện", "tinh nguyen"},
	}

	for _, p := range pairs {
		assert.Equal(t, Normalize(p[0]), Normalize(p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("hoat dong o dau", "o dau"))
	assert.True(t, ContainsPhrase("ngay mai", "ngay"))
	assert.False(t, ContainsPhrase("ngaymai", "ngay"))
	assert.False(t, ContainsPhrase("hoat dong", ""))
	assert.Equal(t, []string{"hoat", "dong"}, Tokens("hoat dong"))
}

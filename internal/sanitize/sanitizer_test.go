// Package sanitize - Test làm sạch HTML, che từ nhạy cảm và strip text.
package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_RemovesScriptWithContents(t *testing.T) {
	s := NewSanitizer(nil)

	got := s.Sanitize("<p>Hello<script>alert(1)</script></p>")
	assert.Equal(t, "<p>Hello</p>", got, "script phải bị bỏ cùng toàn bộ nội dung")
}

func TestSanitize_NeverEmitsDangerousMarkup(t *testing.T) {
	s := NewSanitizer(nil)

	// Input đối kháng: trộn hoa thường, lồng nhau, attribute độc
	inputs := []string{
		`<SCRIPT>alert(1)</SCRIPT>`,
		`<ScRiPt src="https://evil.vn/x.js"></sCrIpT>`,
		`<p onclick="steal()">text</p>`,
		`<img src="x" ONERROR="alert(1)">`,
		`<IFRAME src="https://evil.vn"></IFRAME>`,
		`<object data="x"><embed src="y"></object>`,
		`<a href="JAVASCRIPT:alert(1)">link</a>`,
		`<a href="java&#9;script:alert(1)">link</a>`,
		`<p><style>body{background:url(javascript:alert(1))}</style>ok</p>`,
		`<span style="width:expression(alert(1))">x</span>`,
	}

	for _, input := range inputs {
		got := strings.ToLower(s.Sanitize(input))
		assert.NotContains(t, got, "<script", "input %q còn lọt script", input)
		assert.NotContains(t, got, "<iframe", "input %q còn lọt iframe", input)
		assert.NotContains(t, got, "<object", "input %q còn lọt object", input)
		assert.NotContains(t, got, "<embed", "input %q còn lọt embed", input)
		assert.NotContains(t, got, "javascript:", "input %q còn lọt javascript:", input)
		for _, handler := range []string{"onclick", "onerror", "onload", "onmouseover"} {
			assert.NotContains(t, got, handler, "input %q còn lọt event handler", input)
		}
	}
}

func TestSanitize_ForcesAnchorRelTarget(t *testing.T) {
	s := NewSanitizer(nil)

	got := s.Sanitize(`<a href="https://printuj.vn/mugs" target="_parent" rel="opener">Mugs</a>`)
	assert.Contains(t, got, `href="https://printuj.vn/mugs"`, "href hợp lệ phải được giữ nguyên")
	assert.Contains(t, got, `rel="nofollow noopener"`, "rel phải bị ép về giá trị an toàn")
	assert.Contains(t, got, `target="_blank"`, "target phải bị ép về giá trị an toàn")
	assert.NotContains(t, got, "_parent", "target từ input không được giữ lại")
	assert.NotContains(t, got, `rel="opener"`, "rel từ input không được giữ lại")
}

func TestSanitize_BalancesTags(t *testing.T) {
	s := NewSanitizer(nil)

	got := s.Sanitize("<b>bold <i>both</b> italic</i>")
	assert.Equal(t, "<b>bold <i>both</i></b> italic", got, "thẻ lồng chéo phải được cân bằng lại")

	got = s.Sanitize("<p>không đóng")
	assert.Equal(t, "<p>không đóng</p>", got, "thẻ mở thiếu thẻ đóng phải được tự đóng")

	got = s.Sanitize("lạc lõng</p>")
	assert.Equal(t, "lạc lõng", got, "thẻ đóng không có thẻ mở phải bị bỏ")
}

func TestSanitize_DropsUnknownTagsKeepsContent(t *testing.T) {
	s := NewSanitizer(nil)

	got := s.Sanitize(`<div class="wrap"><p>In danh thiếp</p><table><tr><td>ô</td></tr></table></div>`)
	assert.Equal(t, "<p>In danh thiếp</p>ô", got, "tag ngoài whitelist bị bỏ nhưng nội dung được giữ")
}

func TestSanitize_KeepsWhitelistedAttrs(t *testing.T) {
	s := NewSanitizer(nil)

	got := s.Sanitize(`<img src="https://cdn.printuj.vn/mug.png" alt="Cốc sứ" width="100" data-x="1">`)
	assert.Contains(t, got, `src="https://cdn.printuj.vn/mug.png"`)
	assert.Contains(t, got, `alt="Cốc sứ"`)
	assert.NotContains(t, got, "width", "attribute ngoài whitelist phải bị bỏ")
	assert.NotContains(t, got, "data-x", "attribute ngoài whitelist phải bị bỏ")
}

func TestSanitize_EmptyInput(t *testing.T) {
	s := NewSanitizer(nil)
	assert.Equal(t, "", s.Sanitize(""))
}

func TestCensor_WholeWordOnly(t *testing.T) {
	s := NewSanitizer([]string{"crap"})

	got := s.Censor("This crap is crappy")
	assert.Equal(t, "This c**p is crappy", got, "chỉ nguyên từ bị che, từ chứa chuỗi con thì không")
}

func TestCensor_CaseInsensitive(t *testing.T) {
	s := NewSanitizer([]string{"crap"})

	got := s.Censor("CRAP and Crap")
	assert.Equal(t, "C**P and C**p", got, "che từ phải không phân biệt hoa thường và giữ ký tự gốc")
}

func TestCensor_PreservesMarkup(t *testing.T) {
	s := NewSanitizer([]string{"crap"})

	got := s.Censor("<p>crap <b>tốt</b></p>")
	assert.Equal(t, "<p>c**p <b>tốt</b></p>", got, "markup phải được giữ nguyên khi che từ")
}

func TestCensor_NonBlacklistedUntouched(t *testing.T) {
	s := NewSanitizer([]string{"crap"})

	input := "<p>Cốc sứ in logo — giá tốt</p>"
	assert.Equal(t, input, s.Censor(input), "text không nằm trong blacklist phải giữ nguyên từng byte")
}

func TestCensor_ShortWordFullyMasked(t *testing.T) {
	s := NewSanitizer([]string{"ok"})

	got := s.Censor("ok rồi")
	assert.Equal(t, "** rồi", got, "từ 2 ký tự phải bị che toàn bộ")
}

func TestStripToText(t *testing.T) {
	s := NewSanitizer(nil)

	got := s.StripToText("<p>In   nhanh</p>\n<ul><li>rẻ</li><li>đẹp</li></ul>", 0)
	assert.Equal(t, "In nhanh rẻ đẹp", got, "markup phải bị bỏ và whitespace phải được gộp")

	got = s.StripToText("<p>Hello <script>var x=1;</script>world</p>", 0)
	assert.Equal(t, "Hello world", got, "nội dung script không phải là text hiển thị")

	got = s.StripToText("<p>In danh thiếp lấy ngay</p>", 7)
	assert.Equal(t, "In danh", got, "text phải bị cắt theo maxLen")
}

func TestClean_SanitizeThenCensor(t *testing.T) {
	s := NewSanitizer([]string{"crap"})

	got := s.Clean(`<p>crap<script>alert(1)</script></p>`)
	assert.Equal(t, "<p>c**p</p>", got)
}

func TestSanitize_DegradedModeOnDeepNesting(t *testing.T) {
	s := NewSanitizer(nil)

	// 100 tầng <b> lồng nhau vượt giới hạn độ sâu
	deep := strings.Repeat("<b>", 100) + "text" + strings.Repeat("</b>", 100)
	got := s.Sanitize(deep)
	assert.Equal(t, "<p>text</p>", got, "input quá sâu phải rơi về chế độ tối giản")
}

func TestIsPlainText(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"Cốc sứ in logo", true},
		{"ao-thun-cao-cap", true},
		{"Nguyễn Văn A & con", true},
		{"", true},
		{"<script>alert(1)</script>", false},
		{"<b>tên đậm</b>", false},
		{"JAVASCRIPT:alert(1)", false},
		{"x onerror=alert(1)", false},
		{"eval(document.cookie)", false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, IsPlainText(c.input), "IsPlainText(%q)", c.input)
	}
}

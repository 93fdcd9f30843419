// Package sanitize làm sạch và che từ nhạy cảm cho rich text (mô tả sản phẩm,
// mô tả option) trước khi render. Mọi nội dung HTML nhập từ admin hay từ nguồn
// ngoài đều phải đi qua package này trước khi chạm tới client — không có đường
// render nào được bỏ qua bước này, kể cả preview.
package sanitize

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"print_commerce/internal/logger"

	"golang.org/x/net/html"
)

// allowedTags là whitelist các tag định dạng/cấu trúc được giữ lại.
var allowedTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true,
	"p": true, "br": true,
	"ul": true, "ol": true, "li": true,
	"span": true, "a": true, "img": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// allowedAttrs là whitelist attribute theo từng tag. rel/target của thẻ a
// không nằm ở đây vì chúng luôn bị ép về giá trị an toàn, bất kể input.
var allowedAttrs = map[string]map[string]bool{
	"a":    {"href": true},
	"img":  {"src": true, "alt": true},
	"span": {"style": true},
}

// dangerousContainers là các tag bị loại bỏ CÙNG toàn bộ nội dung bên trong.
var dangerousContainers = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
}

// voidTags là các tag không có thẻ đóng.
var voidTags = map[string]bool{
	"br": true, "img": true, "embed": true,
}

// rawContentTags là các tag có nội dung là code, không phải text hiển thị.
var rawContentTags = map[string]bool{
	"script": true, "style": true,
}

// DefaultCensorWords là danh sách từ cần che mặc định, override qua CENSOR_WORDS.
var DefaultCensorWords = []string{
	"fuck", "shit", "bitch", "asshole", "bastard", "dick", "crap",
}

// maxNesting là độ sâu tag lồng nhau tối đa; vượt quá coi như input hỏng
// và chuyển sang chế độ làm sạch tối giản.
const maxNesting = 64

// Sanitizer giữ danh sách pattern che từ đã compile sẵn.
type Sanitizer struct {
	censorPatterns []*regexp.Regexp
}

// NewSanitizer tạo sanitizer với danh sách từ cần che.
// Danh sách rỗng dùng DefaultCensorWords.
func NewSanitizer(censorWords []string) *Sanitizer {
	if len(censorWords) == 0 {
		censorWords = DefaultCensorWords
	}
	s := &Sanitizer{}
	for _, word := range censorWords {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		// Chỉ khớp nguyên từ, không phân biệt hoa thường
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		s.censorPatterns = append(s.censorPatterns, re)
	}
	return s
}

// Sanitize làm sạch HTML: bỏ script/style/iframe/object/embed cùng nội dung,
// bỏ mọi attribute dạng on*, chỉ giữ tag/attribute trong whitelist và tự cân
// bằng các thẻ mở/đóng. Không bao giờ trả lỗi: input hỏng nặng được chuyển
// sang chế độ tối giản (giữ text, bọc trong <p>).
func (s *Sanitizer) Sanitize(dirty string) (out string) {
	if dirty == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			logger.WithModule("sanitize").Warnf("Làm sạch HTML gặp panic, chuyển sang chế độ tối giản: %v", r)
			out = s.degrade(dirty)
		}
	}()

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(dirty))
	var open []string // stack các tag đang mở, phục vụ cân bằng thẻ
	dropDepth := 0    // > 0: đang ở trong container nguy hiểm, bỏ cả nội dung

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				logger.WithModule("sanitize").Warnf("Tokenizer lỗi (%v), chuyển sang chế độ tối giản", z.Err())
				return s.degrade(dirty)
			}
			// Đóng các tag còn mở theo thứ tự ngược
			for i := len(open) - 1; i >= 0; i-- {
				b.WriteString("</" + open[i] + ">")
			}
			return b.String()

		case html.TextToken:
			if dropDepth > 0 {
				continue
			}
			b.WriteString(html.EscapeString(string(z.Text())))

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := strings.ToLower(string(name))

			if dropDepth > 0 {
				// Container nguy hiểm lồng nhau tăng độ sâu để thẻ đóng khớp đúng
				if dangerousContainers[tag] && tt == html.StartTagToken && !voidTags[tag] {
					dropDepth++
				}
				continue
			}

			if dangerousContainers[tag] {
				if tt == html.StartTagToken && !voidTags[tag] {
					dropDepth++
				}
				continue
			}
			if !allowedTags[tag] {
				// Tag ngoài whitelist: bỏ tag, giữ nội dung bên trong
				continue
			}

			attrs := s.filterAttrs(z, tag, hasAttr)
			if tag == "a" {
				// rel/target luôn bị ép về giá trị an toàn, bất kể input
				attrs = append(attrs, `rel="nofollow noopener"`, `target="_blank"`)
			}

			b.WriteString("<" + tag)
			for _, attr := range attrs {
				b.WriteString(" " + attr)
			}
			b.WriteString(">")

			if voidTags[tag] {
				continue
			}
			if tt == html.SelfClosingTagToken {
				// <p/> dạng tự đóng: không đẩy vào stack, đóng ngay
				b.WriteString("</" + tag + ">")
				continue
			}
			open = append(open, tag)
			if len(open) > maxNesting {
				logger.WithModule("sanitize").Warn("Nội dung HTML vượt quá độ sâu cho phép, chuyển sang chế độ tối giản")
				return s.degrade(dirty)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := strings.ToLower(string(name))

			if dangerousContainers[tag] {
				if dropDepth > 0 {
					dropDepth--
				}
				continue
			}
			if dropDepth > 0 || !allowedTags[tag] || voidTags[tag] {
				continue
			}

			// Tìm tag trong stack từ trên xuống; thẻ đóng lạc lõng thì bỏ
			idx := -1
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == tag {
					idx = i
					break
				}
			}
			if idx == -1 {
				continue
			}
			// Đóng mọi tag mở sau nó để giữ cây cân bằng
			for i := len(open) - 1; i >= idx; i-- {
				b.WriteString("</" + open[i] + ">")
			}
			open = open[:idx]

		default:
			// Comment, doctype: bỏ
		}
	}
}

// filterAttrs đọc và lọc attribute của tag hiện tại theo whitelist.
func (s *Sanitizer) filterAttrs(z *html.Tokenizer, tag string, hasAttr bool) []string {
	var attrs []string
	for hasAttr {
		k, v, more := z.TagAttr()
		hasAttr = more

		key := strings.ToLower(string(k))
		val := string(v)

		// Mọi event handler đều bị loại, kể cả khi tag được phép
		if strings.HasPrefix(key, "on") {
			continue
		}
		if !allowedAttrs[tag][key] {
			continue
		}
		switch key {
		case "href":
			if !isSafeURL(val, false) {
				continue
			}
		case "src":
			if !isSafeURL(val, true) {
				continue
			}
		case "style":
			if !isSafeStyle(val) {
				continue
			}
		}
		attrs = append(attrs, fmt.Sprintf(`%s="%s"`, key, html.EscapeString(val)))
	}
	return attrs
}

// Censor che các từ trong blacklist trên phần text của HTML đã làm sạch.
// Chỉ text node bị sửa; markup được giữ nguyên byte nên không thể tái sinh
// markup không an toàn.
func (s *Sanitizer) Censor(safeHTML string) string {
	if safeHTML == "" || len(s.censorPatterns) == 0 {
		return safeHTML
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(safeHTML))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Không chạm vào input nếu tokenizer lỗi
				return safeHTML
			}
			return b.String()
		}
		if tt == html.TextToken {
			b.WriteString(html.EscapeString(s.censorText(string(z.Text()))))
			continue
		}
		b.Write(z.Raw())
	}
}

// censorText áp các pattern che từ lên một đoạn text thuần.
func (s *Sanitizer) censorText(text string) string {
	for _, re := range s.censorPatterns {
		text = re.ReplaceAllStringFunc(text, maskWord)
	}
	return text
}

// maskWord thay phần giữa của từ bằng dấu *, giữ ký tự đầu và cuối.
// Từ quá ngắn (<= 2 ký tự) bị che toàn bộ.
func maskWord(word string) string {
	runes := []rune(word)
	n := len(runes)
	if n <= 2 {
		return strings.Repeat("*", n)
	}
	return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
}

// StripToText bỏ toàn bộ markup, gộp whitespace liên tiếp thành một khoảng
// trắng và cắt còn maxLen ký tự (maxLen <= 0: không cắt). Dùng cho meta
// description và text preview. Hàm thuần, không side effect.
func (s *Sanitizer) StripToText(htmlIn string, maxLen int) string {
	if htmlIn == "" {
		return ""
	}

	var parts []string
	z := html.NewTokenizer(strings.NewReader(htmlIn))
	skipDepth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			if rawContentTags[strings.ToLower(string(name))] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if rawContentTags[strings.ToLower(string(name))] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			parts = append(parts, string(z.Text()))
		}
	}

	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = strings.TrimRight(string(runes[:maxLen]), " ")
		}
	}
	return text
}

// Clean là pipeline đầy đủ cho rich text: làm sạch rồi che từ.
func (s *Sanitizer) Clean(dirty string) string {
	return s.Censor(s.Sanitize(dirty))
}

// plainTextThreats là các dấu hiệu markup/script bị cấm trong field text
// thuần. Một dấu "<" bất kỳ đã là markup nên bị chặn luôn, không cần liệt
// kê từng tag.
var plainTextThreats = []string{
	"<",
	"javascript:",
	"vbscript:",
	"onerror=",
	"onload=",
	"onclick=",
	"onmouseover=",
	"eval(",
	"document.cookie",
	"document.write",
	"innerhtml",
	"fromcharcode",
	"window.location",
}

// IsPlainText báo chuỗi không chứa markup hay vector script nào. Dùng cho
// các field text thuần (tên, slug, nhãn): khác với rich text được làm sạch
// rồi giữ lại, các field này bị từ chối ngay khi có dấu hiệu markup.
func IsPlainText(s string) bool {
	lower := strings.ToLower(s)
	for _, threat := range plainTextThreats {
		if strings.Contains(lower, threat) {
			return false
		}
	}
	return true
}

// degrade là chế độ tối giản khi input hỏng: giữ lại text thuần, bọc trong <p>.
func (s *Sanitizer) degrade(dirty string) string {
	text := s.StripToText(dirty, 0)
	if text == "" {
		return ""
	}
	return "<p>" + html.EscapeString(text) + "</p>"
}

// isSafeURL kiểm tra scheme của URL. Whitespace và ký tự điều khiển bị loại
// trước khi so khớp để chặn kiểu "java\tscript:".
func isSafeURL(raw string, isImage bool) bool {
	v := strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.ToLower(raw))

	if strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") {
		return false
	}
	if strings.HasPrefix(v, "data:") {
		// data URI chỉ cho phép với ảnh
		return isImage && strings.HasPrefix(v, "data:image/")
	}
	return true
}

// isSafeStyle chặn các giá trị style có thể thực thi code hoặc tải tài nguyên.
func isSafeStyle(style string) bool {
	v := strings.ToLower(style)
	for _, bad := range []string{"expression", "javascript:", "url(", "@import", "behavior"} {
		if strings.Contains(v, bad) {
			return false
		}
	}
	return true
}

// std là sanitizer mặc định của package, cấu hình lại qua Init lúc khởi động.
var std = NewSanitizer(nil)

// Init cấu hình lại sanitizer mặc định theo danh sách từ cần che.
func Init(censorWords []string) {
	std = NewSanitizer(censorWords)
}

// Sanitize làm sạch HTML bằng sanitizer mặc định.
func Sanitize(dirty string) string { return std.Sanitize(dirty) }

// Censor che từ blacklist bằng sanitizer mặc định.
func Censor(safeHTML string) string { return std.Censor(safeHTML) }

// StripToText bỏ markup bằng sanitizer mặc định.
func StripToText(htmlIn string, maxLen int) string { return std.StripToText(htmlIn, maxLen) }

// Clean làm sạch rồi che từ bằng sanitizer mặc định.
func Clean(dirty string) string { return std.Clean(dirty) }

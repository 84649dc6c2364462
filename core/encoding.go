package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCodePage 新建文档使用的代码页
const DefaultCodePage = "ANSI_1252"

var codePages = map[string]encoding.Encoding{
	"ANSI_874":  charmap.Windows874,
	"ANSI_932":  japanese.ShiftJIS,
	"ANSI_936":  simplifiedchinese.GBK,
	"ANSI_949":  korean.EUCKR,
	"ANSI_950":  traditionalchinese.Big5,
	"ANSI_1250": charmap.Windows1250,
	"ANSI_1251": charmap.Windows1251,
	"ANSI_1252": charmap.Windows1252,
	"ANSI_1253": charmap.Windows1253,
	"ANSI_1254": charmap.Windows1254,
	"ANSI_1255": charmap.Windows1255,
	"ANSI_1256": charmap.Windows1256,
	"ANSI_1257": charmap.Windows1257,
	"ANSI_1258": charmap.Windows1258,
	"UTF8":      unicode.UTF8,
	"UTF-8":     unicode.UTF8,
}

// CodePage 根据 $DWGCODEPAGE 取编码，未知代码页退回 Windows-1252
func CodePage(name string) encoding.Encoding {
	if enc, ok := codePages[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return enc
	}
	return charmap.Windows1252
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == nil || enc == unicode.UTF8
}

// EncodeString 按代码页编码，无法表示的字符写成 \U+XXXX
func EncodeString(enc encoding.Encoding, s string) []byte {
	if isUTF8(enc) {
		return []byte(s)
	}

	var (
		out     = make([]byte, 0, len(s))
		encoder = enc.NewEncoder()
	)
	for _, r := range s {
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
			continue
		}
		b, err := encoder.Bytes([]byte(string(r)))
		if err != nil || len(b) == 0 {
			if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
				out = append(out, fmt.Sprintf(`\U+%04X\U+%04X`, r1, r2)...)
			} else {
				out = append(out, fmt.Sprintf(`\U+%04X`, r)...)
			}
			continue
		}
		out = append(out, b...)
	}
	return out
}

// DecodeString 按代码页解码并还原 \U+XXXX 转义
func DecodeString(enc encoding.Encoding, b []byte) string {
	var s string
	if isUTF8(enc) {
		s = string(b)
	} else if d, err := enc.NewDecoder().Bytes(b); err == nil {
		s = string(d)
	} else {
		s = string(b)
	}
	return unescape(s)
}

func unescape(s string) string {
	if !strings.Contains(s, `\U+`) && !strings.Contains(s, `\u+`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); {
		if i+7 <= len(s) && s[i] == '\\' && (s[i+1] == 'U' || s[i+1] == 'u') && s[i+2] == '+' {
			if r, err := strconv.ParseUint(s[i+3:i+7], 16, 32); err == nil {
				// 代理对：\U+D83D\U+DE00
				if utf16.IsSurrogate(rune(r)) && i+14 <= len(s) && s[i+7] == '\\' && s[i+9] == '+' {
					if r2, err := strconv.ParseUint(s[i+10:i+14], 16, 32); err == nil {
						sb.WriteRune(utf16.DecodeRune(rune(r), rune(r2)))
						i += 14
						continue
					}
				}
				sb.WriteRune(rune(r))
				i += 7
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

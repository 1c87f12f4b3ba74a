package util

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

const codePageUtf8 = 65001

var codePages = map[uint32]encoding.Encoding{
	437:  charmap.CodePage437,
	850:  charmap.CodePage850,
	866:  charmap.CodePage866,
	874:  charmap.Windows874,
	932:  japanese.ShiftJIS,
	936:  simplifiedchinese.GBK,
	949:  korean.EUCKR,
	950:  traditionalchinese.Big5,
	1250: charmap.Windows1250,
	1251: charmap.Windows1251,
	1252: charmap.Windows1252,
	1253: charmap.Windows1253,
	1254: charmap.Windows1254,
	1255: charmap.Windows1255,
	1256: charmap.Windows1256,
	1257: charmap.Windows1257,
	1258: charmap.Windows1258,
}

// DecodeConsoleOutput decodes text written by a console program
// using the legacy code page of the host.
func DecodeConsoleOutput(data []byte) string {
	return decodeCodePage(data, consoleCodePage())
}

// decodeCodePage never fails: undecodable bytes are dropped
func decodeCodePage(data []byte, codePage uint32) string {
	enc, ok := codePages[codePage]
	if !ok {
		return strings.ToValidUTF8(string(data), "")
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return strings.ReplaceAll(string(decoded), string(utf8.RuneError), "")
}

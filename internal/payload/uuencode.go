package payload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	EncodingUU     = "uuencode"
	EncodingBase64 = "base64"

	uuLineBytes  = 45
	b64LineChars = 76
)

var (
	ErrNoEncodingHeader = errors.New("no begin line")
	ErrNoEndLine        = errors.New("no end line")
)

// Attachment is a decoded binary together with the envelope details needed
// to reproduce its encoded form.
type Attachment struct {
	Encoding string // EncodingUU or EncodingBase64
	Mode     string // permission bits as written, e.g. "644"
	Name     string
	Data     []byte

	// grave is set when zero sextets were written as '`' rather than ' '.
	grave bool
	crlf  bool
}

// DecodeAttachment decodes a uuencoded or begin-base64 body. Blank lines
// before the begin line are ignored.
func DecodeAttachment(raw []byte) (*Attachment, error) {
	lines := splitLines(raw)
	i := 0
	for i < len(lines) && len(bytes.TrimSpace(lines[i].text)) == 0 {
		i++
	}
	if i == len(lines) {
		return nil, ErrNoEncodingHeader
	}
	header := string(lines[i].text)
	fields := strings.Fields(header)
	if len(fields) < 2 || (fields[0] != "begin" && fields[0] != "begin-base64") {
		return nil, ErrNoEncodingHeader
	}
	a := &Attachment{Encoding: EncodingUU, Mode: fields[1], crlf: lines[i].crlf}
	if fields[0] == "begin-base64" {
		a.Encoding = EncodingBase64
	}
	if len(fields) > 2 {
		// File names may contain spaces.
		rest := strings.TrimSpace(header)
		rest = strings.TrimSpace(rest[len(fields[0]):])
		a.Name = strings.TrimSpace(rest[len(fields[1]):])
	}

	var err error
	if a.Encoding == EncodingBase64 {
		a.Data, err = decodeBase64Lines(lines[i+1:])
	} else {
		a.Data, a.grave, err = decodeUULines(lines[i+1:])
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", a.Encoding, a.Name, err)
	}
	return a, nil
}

type line struct {
	text []byte
	crlf bool
}

func splitLines(raw []byte) []line {
	var out []line
	for len(raw) > 0 {
		i := bytes.IndexByte(raw, '\n')
		var text []byte
		if i < 0 {
			text, raw = raw, nil
		} else {
			text, raw = raw[:i], raw[i+1:]
		}
		l := line{text: text}
		if n := len(text); n > 0 && text[n-1] == '\r' {
			l.text, l.crlf = text[:n-1], true
		}
		out = append(out, l)
	}
	return out
}

func decodeUULines(lines []line) (data []byte, grave bool, err error) {
	for _, l := range lines {
		text := l.text
		if string(bytes.TrimSpace(text)) == "end" {
			return data, grave, nil
		}
		if len(text) == 0 {
			continue
		}
		if text[0] == '`' {
			grave = true
		}
		n := int(uuValue(text[0]))
		if n == 0 {
			continue
		}
		body := text[1:]
		if bytes.IndexByte(body, '`') >= 0 {
			grave = true
		}
		for j := 0; n > 0; j += 4 {
			var c [4]byte
			for k := range c {
				if j+k < len(body) {
					c[k] = uuValue(body[j+k])
				}
			}
			triple := [3]byte{
				c[0]<<2 | c[1]>>4,
				c[1]<<4 | c[2]>>2,
				c[2]<<6 | c[3],
			}
			take := min(n, 3)
			data = append(data, triple[:take]...)
			n -= take
		}
	}
	return nil, grave, ErrNoEndLine
}

func uuValue(c byte) byte {
	return (c - ' ') & 0x3f
}

func uuChar(v byte, grave bool) byte {
	if v == 0 && grave {
		return '`'
	}
	return v + ' '
}

func decodeBase64Lines(lines []line) ([]byte, error) {
	var buf bytes.Buffer
	for _, l := range lines {
		text := bytes.TrimSpace(l.text)
		if string(text) == "====" {
			return base64.StdEncoding.DecodeString(buf.String())
		}
		buf.Write(text)
	}
	return nil, ErrNoEndLine
}

// Encode reproduces the encoded form of a. Bodies decoded from a canonical
// encoder round-trip byte for byte.
func (a *Attachment) Encode() []byte {
	eol := "\n"
	if a.crlf {
		eol = "\r\n"
	}
	var buf bytes.Buffer
	if a.Encoding == EncodingBase64 {
		buf.WriteString("begin-base64 " + a.Mode + " " + a.Name + eol)
		enc := base64.StdEncoding.EncodeToString(a.Data)
		for len(enc) > 0 {
			n := min(len(enc), b64LineChars)
			buf.WriteString(enc[:n] + eol)
			enc = enc[n:]
		}
		buf.WriteString("====" + eol)
		return buf.Bytes()
	}

	buf.WriteString("begin " + a.Mode + " " + a.Name + eol)
	data := a.Data
	for len(data) > 0 {
		n := min(len(data), uuLineBytes)
		chunk := data[:n]
		data = data[n:]
		buf.WriteByte(uuChar(byte(n), a.grave))
		for j := 0; j < n; j += 3 {
			var t [3]byte
			copy(t[:], chunk[j:])
			buf.WriteByte(uuChar(t[0]>>2, a.grave))
			buf.WriteByte(uuChar((t[0]<<4|t[1]>>4)&0x3f, a.grave))
			buf.WriteByte(uuChar((t[1]<<2|t[2]>>6)&0x3f, a.grave))
			buf.WriteByte(uuChar(t[2]&0x3f, a.grave))
		}
		buf.WriteString(eol)
	}
	buf.WriteByte(uuChar(0, a.grave))
	buf.WriteString(eol + "end" + eol)
	return buf.Bytes()
}

// NewAttachment prepares data for encoding with the conventional backquote
// form used by EDGAR filer software.
func NewAttachment(encoding, mode, name string, data []byte) *Attachment {
	return &Attachment{Encoding: encoding, Mode: mode, Name: name, Data: data, grave: true}
}

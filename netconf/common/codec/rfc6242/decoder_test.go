package rfc6242

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	assert "github.com/stretchr/testify/require"
)

var EOM = string(tokenEOM)

func TestEOMDecoding(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
		err    error
	}{
		{"SingleMessage", "123456_abcde" + EOM, "123456_abcde", nil},
		{"TwoMessages", "<a/>" + EOM + "<b/>" + EOM, "<a/><b/>", nil},
		{"PartialEOM", "1234]]>]]XYZ" + EOM, "1234]]>]]XYZ", nil},
		{"EmptyMessage", EOM + "X" + EOM, "X", nil},
		{"NoInput", "", "", nil},
		{"MissingEOM", "ABCDEF", "ABCDEF", io.ErrUnexpectedEOF},
		{"TruncatedEOM", "ABC]]>]]", "ABC]]>]]", io.ErrUnexpectedEOF},
	}

	readers := map[string]func(io.Reader) io.Reader{
		"whole":   func(r io.Reader) io.Reader { return r },
		"onebyte": iotest.OneByteReader,
		"halves":  iotest.HalfReader,
	}

	for _, tt := range tests {
		for rname, wrap := range readers {
			t.Run(tt.name+"/"+rname, func(t *testing.T) {
				d := NewDecoder(wrap(strings.NewReader(tt.input)))
				got, err := io.ReadAll(d)
				if tt.err == nil {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, tt.err)
				}
				assert.Equal(t, tt.expect, string(got))
			})
		}
	}
}

func TestDecodingMessageLargerThanBuffer(t *testing.T) {
	payload := strings.Repeat("0123456789", 1000)
	d := NewDecoder(strings.NewReader(payload+EOM), WithScannerBufferSize(4096))
	got, err := io.ReadAll(d)
	assert.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestSmallReadBuffer(t *testing.T) {
	d := NewDecoder(strings.NewReader("1234567890" + EOM))
	buf := make([]byte, 8)
	n, err := d.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "12345678", string(buf[:n]))
	n, err = d.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "90", string(buf[:n]))
	_, err = d.Read(buf)
	assert.Equal(t, io.EOF, err)
}

func TestEOMEncoding(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		eom    bool
		expect string
	}{
		{"SimpleMessagePart", []string{"ABC"}, false, "ABC"},
		{"MultiPartMessage", []string{"ABC", "XYZ"}, false, "ABCXYZ"},
		{"TerminatedMessage", []string{"ABC", "XYZ"}, true, "ABCXYZ" + EOM},
		{"EmptyMessage", []string{""}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			e := NewEncoder(buf)
			for _, i := range tt.inputs {
				_, _ = e.Write([]byte(i))
			}
			if tt.eom {
				assert.NoError(t, e.EndOfMessage())
			}
			assert.Equal(t, tt.expect, buf.String())
			assert.NoError(t, e.Close())
		})
	}
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(b []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(b)
}

func TestWriteMessage(t *testing.T) {
	w := &countingWriter{}
	assert.NoError(t, NewEncoder(w).WriteMessage([]byte("<hello/>")))
	assert.Equal(t, "<hello/>"+EOM, w.String())
	assert.Equal(t, 1, w.writes, "message and delimiter should be written together")
	assert.Equal(t, EOM, string(EndOfMessage()))
}

func TestFramingRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	e := NewEncoder(buf)
	msgs := []string{"<a>one</a>", "<b>two &gt;&gt;</b>"}
	for _, m := range msgs {
		assert.NoError(t, e.WriteMessage([]byte(m)))
	}
	assert.Equal(t, 2, strings.Count(buf.String(), EOM))

	got, err := io.ReadAll(NewDecoder(buf))
	assert.NoError(t, err)
	assert.Equal(t, strings.Join(msgs, ""), string(got))
}

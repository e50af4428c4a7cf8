// Copyright 2018 Andrew Fort
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package rfc6242

import (
	"bufio"
	"bytes"
	"io"
)

// tokenEOM terminates every message under end-of-message framing.
var tokenEOM = []byte("]]>]]>")

// EndOfMessage returns the message delimiter.
func EndOfMessage() []byte {
	return append([]byte(nil), tokenEOM...)
}

// Decoder is an RFC6242 end-of-message framing decoder filter.
//
// Decoder reads framed input and delivers the message payloads as a single
// stream with the delimiters removed, so a streaming XML decoder can consume
// one message after another.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	// Input is the framed input source.
	Input io.Reader

	s       *bufio.Scanner
	pending []byte
	bufSize int
	// eofOK is false while part of a message has been delivered without its
	// delimiter.
	eofOK bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithScannerBufferSize sets the maximum read buffer size.
func WithScannerBufferSize(size int) DecoderOption {
	return func(d *Decoder) {
		d.bufSize = size
	}
}

// NewDecoder creates a new RFC6242 transport framing decoder reading from
// input, configured with any options provided.
func NewDecoder(input io.Reader, options ...DecoderOption) *Decoder {
	d := &Decoder{
		Input:   input,
		bufSize: defaultReaderBufferSize,
		// A stream closed before any data arrives ends with io.EOF, not io.ErrUnexpectedEOF.
		eofOK: true,
	}
	for _, option := range options {
		option(d)
	}
	d.s = bufio.NewScanner(input)
	d.s.Buffer(make([]byte, minReaderBufferSize), d.bufSize)
	d.s.Split(d.split)
	return d
}

// Read reads from the Decoder's input and copies the payload into b,
// implementing io.Reader.
func (d *Decoder) Read(b []byte) (n int, err error) {
	for len(d.pending) == 0 {
		if !d.s.Scan() {
			if err = d.s.Err(); err == nil {
				err = io.EOF
				if !d.eofOK {
					err = io.ErrUnexpectedEOF
				}
			}
			return 0, err
		}
		d.pending = d.s.Bytes()
	}
	n = copy(b, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

// split delivers payload up to each delimiter. Without a delimiter in view it
// delivers all but the bytes that could begin one, so messages larger than
// the scanner buffer still stream through.
func (d *Decoder) split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.Index(data, tokenEOM); i >= 0 {
		d.eofOK = true
		return i + len(tokenEOM), data[:i], nil
	}
	if atEOF {
		d.eofOK = false
		return len(data), data, nil
	}
	if safe := len(data) - (len(tokenEOM) - 1); safe > 0 {
		d.eofOK = false
		return safe, data[:safe], nil
	}
	return 0, nil, nil
}

const (
	// defaultReaderBufferSize is the default read buffer capacity size.
	defaultReaderBufferSize = 65536
	minReaderBufferSize     = 4096
)

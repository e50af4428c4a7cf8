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

import "io"

// NewEncoder returns a new RFC6242 end-of-message framing writer with
// underlying writer output.
func NewEncoder(output io.Writer) *Encoder {
	return &Encoder{Output: output}
}

// Encoder is a pass through writer that terminates messages on request.
type Encoder struct {
	// Output is the underlying Writer to receive encoded output
	Output io.Writer
}

// Write writes b to the underlying writer.
func (e *Encoder) Write(b []byte) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	}
	return e.Output.Write(b)
}

// WriteMessage writes b followed by the delimiter in a single write.
func (e *Encoder) WriteMessage(b []byte) error {
	msg := make([]byte, 0, len(b)+len(tokenEOM))
	msg = append(append(msg, b...), tokenEOM...)
	_, err := e.Output.Write(msg)
	return err
}

// EndOfMessage must be called after each conceptual message (or XML document)
// is written to the Encoder. It writes "]]>]]>".
func (e *Encoder) EndOfMessage() error {
	_, err := e.Output.Write(tokenEOM)
	return err
}

// Close attempts to close the underlying writer.
func (e *Encoder) Close() error {
	if closer, ok := e.Output.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

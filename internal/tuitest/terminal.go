package tuitest

import (
	"bytes"
	"io"
)

// terminalReply answers a query the program sends to its terminal. Programs block on
// these (cursor position, foreground and background colour) when no real terminal is
// attached.
type terminalReply struct {
	query  []byte
	answer []byte
}

var terminalReplies = []terminalReply{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderMaxBuffer = 256
	responderTail      = 64
)

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 2*responderMaxBuffer)}
}

// Process scans chunk for queries and writes the matching answers. A short tail is kept so
// queries split across reads are still seen.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > responderMaxBuffer {
		tr.buf = append(tr.buf[:0], tr.buf[len(tr.buf)-responderTail:]...)
	}
}

// answerNext replies to the earliest pending query and drops everything up to its end.
func (tr *terminalResponder) answerNext() bool {
	first, at := -1, len(tr.buf)
	for i, reply := range terminalReplies {
		if idx := bytes.Index(tr.buf, reply.query); idx >= 0 && idx < at {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	reply := terminalReplies[first]
	tr.buf = tr.buf[at+len(reply.query):]
	_, _ = tr.w.Write(reply.answer)
	return true
}

package link

import (
	"io"
	"sync"

	"github.com/golang/glog"
)

// Writer stamps sequence numbers and writes packets to a stream.
type Writer struct {
	w    io.Writer
	seq  PacketSeq
	lock sync.Mutex
}

// NewWriter creates a Writer with a random initial sequence.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, seq: NewPacketSeq()}
}

// Send writes the packet and advances the sequence.
func (w *Writer) Send(code byte, data ...byte) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	pkt := &Packet{Seq: w.seq, Code: code, Data: data}
	if _, err := pkt.WriteTo(w.w); err != nil {
		return err
	}
	if glog.V(3) {
		glog.Infof("SND seq=%d code=%x data=%v", pkt.Seq, pkt.Code, pkt.Data)
	}
	w.seq = w.seq.Next()
	return nil
}

// Close closes the underlying stream if it's closable.
func (w *Writer) Close() error {
	if closer, ok := w.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

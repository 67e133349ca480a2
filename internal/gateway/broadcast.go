package gateway

import (
	"strconv"
	"time"
)

// buildEnvelope hand-crafts the envelope JSON around an already
// marshaled payload. Cheaper than a second json.Marshal on the fan-out
// path, and the format stays fixed for client-side parsing:
// {"stream":"...","type":"...","data":...,"ts":"...","seq":N,"stream_seq":N}
func buildEnvelope(stream, typ string, data []byte, now time.Time, seq, streamSeq int64) []byte {
	buf := make([]byte, 0, len(stream)+len(typ)+len(data)+160)
	buf = append(buf, `{"stream":"`...)
	buf = append(buf, stream...)
	buf = append(buf, `","type":"`...)
	buf = append(buf, typ...)
	buf = append(buf, `","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, `,"stream_seq":`...)
	buf = strconv.AppendInt(buf, streamSeq, 10)
	buf = append(buf, '}')
	return buf
}

// broadcast stamps sequence numbers, records the latest state and the
// replay entry, then fans the envelope out to every subscribed client.
// Slow clients are skipped rather than blocked on.
func (h *Hub) broadcast(stream, typ string, data []byte) {
	now := time.Now().UTC()

	h.mu.Lock()
	h.streamSeqs[stream]++
	streamSeq := h.streamSeqs[stream]
	h.seq++
	seq := h.seq
	h.latest[stream] = latestEntry{Data: data, TS: now, Seq: streamSeq}

	rb, ok := h.replayBufs[stream]
	if !ok {
		rb = NewReplayBuffer(ReplayCap)
		h.replayBufs[stream] = rb
	}
	h.mu.Unlock()

	buf := buildEnvelope(stream, typ, data, now, seq, streamSeq)
	rb.Push(streamSeq, buf)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.wantsStream(stream) {
			continue
		}
		select {
		case client.send <- buf:
		default:
		}
	}
}

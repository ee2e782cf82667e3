package mididarwin

// systemFilter strips system messages from a raw CoreMIDI byte stream so only
// channel voice messages reach the decoder. A SysEx span or the data bytes of
// a system common message may continue into the next packet, so the filter
// keeps its state between calls.
type systemFilter struct {
	inSysEx bool
	skip    int // data bytes still owed to a dropped system common message
}

// systemCommonDataLen is the data length of the system common statuses 0xF1-0xF6.
var systemCommonDataLen = map[byte]int{0xF1: 1, 0xF2: 2, 0xF3: 1}

// channelBytes returns the channel message bytes of data, or nil if none remain.
func (f *systemFilter) channelBytes(data []byte) []byte {
	var out []byte
	for _, b := range data {
		switch {
		case b >= 0xF8:
			// real-time bytes may appear anywhere, even inside SysEx
		case b == 0xF0:
			f.inSysEx, f.skip = true, 0
		case b == 0xF7:
			f.inSysEx = false
		case b > 0xF0:
			f.inSysEx, f.skip = false, systemCommonDataLen[b]
		case b >= 0x80:
			f.inSysEx, f.skip = false, 0
			out = append(out, b)
		case f.inSysEx:
		case f.skip > 0:
			f.skip--
		default:
			out = append(out, b)
		}
	}
	return out
}

func (f *systemFilter) reset() {
	*f = systemFilter{}
}

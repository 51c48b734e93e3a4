package voxio

import (
	"encoding/binary"
	"errors"
	"io"
)

const oggMagic = "OggS"

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
	errInvalidOpusHead   = errors.New("opus: invalid OpusHead packet")
	errUnsupportedOpus   = errors.New("opus: unsupported version")
)

// oggPageHeader is the fixed 27-byte Ogg page header plus its segment table.
type oggPageHeader struct {
	GranulePos   int64
	SerialNumber uint32
	SequenceNum  uint32
	NumSegments  uint8
	SegmentTable []uint8
}

func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [27]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != oggMagic {
		return nil, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return nil, errInvalidOggVersion
	}

	hdr := &oggPageHeader{
		GranulePos:   int64(binary.LittleEndian.Uint64(buf[6:14])),
		SerialNumber: binary.LittleEndian.Uint32(buf[14:18]),
		SequenceNum:  binary.LittleEndian.Uint32(buf[18:22]),
		NumSegments:  buf[26],
	}
	if hdr.NumSegments > 0 {
		hdr.SegmentTable = make([]uint8, hdr.NumSegments)
		if _, err := io.ReadFull(r, hdr.SegmentTable); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

// readOggPageBody splits a page's body into packets using the segment table:
// a segment of 255 bytes continues the current packet, a shorter one ends it.
func readOggPageBody(r io.Reader, hdr *oggPageHeader) ([][]byte, error) {
	var totalSize int
	for _, seg := range hdr.SegmentTable {
		totalSize += int(seg)
	}
	body := make([]byte, totalSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	var packets [][]byte
	var current []byte
	offset := 0
	for _, segSize := range hdr.SegmentTable {
		current = append(current, body[offset:offset+int(segSize)]...)
		offset += int(segSize)
		if segSize < 255 {
			packets = append(packets, current)
			current = nil
		}
	}
	if len(current) > 0 {
		packets = append(packets, current)
	}
	return packets, nil
}

// opusHead is the parsed OpusHead identification packet.
type opusHead struct {
	Channels   uint8
	PreSkip    uint16
	SampleRate uint32
}

func parseOpusHead(data []byte) (*opusHead, error) {
	if len(data) < 19 || string(data[0:8]) != "OpusHead" {
		return nil, errInvalidOpusHead
	}
	if data[8] != 1 {
		return nil, errUnsupportedOpus
	}
	return &opusHead{
		Channels:   data[9],
		PreSkip:    binary.LittleEndian.Uint16(data[10:12]),
		SampleRate: binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}

// oggOpusReader demuxes an Ogg/Opus stream into raw Opus packets, tracking
// enough page state to support granule-based seeking.
type oggOpusReader struct {
	r           io.ReadSeeker
	fileSize    int64
	head        *opusHead
	dataStart   int64
	lastGranule int64
}

func newOggOpusReader(r io.ReadSeeker) (*oggOpusReader, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	o := &oggOpusReader{r: r, fileSize: size}

	hdr, err := parseOggPageHeader(r)
	if err != nil {
		return nil, err
	}
	packets, err := readOggPageBody(r, hdr)
	if err != nil {
		return nil, err
	}
	if len(packets) == 0 {
		return nil, errInvalidOpusHead
	}
	o.head, err = parseOpusHead(packets[0])
	if err != nil {
		return nil, err
	}

	// OpusTags page, discarded.
	hdr, err = parseOggPageHeader(r)
	if err != nil {
		return nil, err
	}
	if _, err := readOggPageBody(r, hdr); err != nil {
		return nil, err
	}

	o.dataStart, err = r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if err := o.scanLastGranule(); err != nil {
		return nil, err
	}
	if _, err := r.Seek(o.dataStart, io.SeekStart); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *oggOpusReader) channels() int { return int(o.head.Channels) }

func (o *oggOpusReader) preSkip() int { return int(o.head.PreSkip) }

func (o *oggOpusReader) rate() int { return int(o.head.SampleRate) }

// oggPage is one demuxed page's worth of Opus packets.
type oggPage struct {
	GranulePos int64
	Packets    [][]byte
}

func (o *oggOpusReader) readPage() (*oggPage, error) {
	hdr, err := parseOggPageHeader(o.r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	packets, err := readOggPageBody(o.r, hdr)
	if err != nil {
		return nil, err
	}
	return &oggPage{GranulePos: hdr.GranulePos, Packets: packets}, nil
}

func (o *oggOpusReader) reset() error {
	_, err := o.r.Seek(o.dataStart, io.SeekStart)
	return err
}

func (o *oggOpusReader) scanLastGranule() error {
	searchSize := min(int64(65536), o.fileSize)
	if _, err := o.r.Seek(o.fileSize-searchSize, io.SeekStart); err != nil {
		return err
	}
	buf := make([]byte, searchSize)
	n, err := io.ReadFull(o.r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	buf = buf[:n]

	lastOggS := -1
	for i := len(buf) - 4; i >= 0; i-- {
		if string(buf[i:i+4]) == oggMagic {
			lastOggS = i
			break
		}
	}
	if lastOggS == -1 {
		return errors.New("ogg: no page found at end of file")
	}
	if lastOggS+14 > len(buf) {
		return errors.New("ogg: incomplete last page header")
	}
	o.lastGranule = int64(binary.LittleEndian.Uint64(buf[lastOggS+6 : lastOggS+14]))
	return nil
}

// duration returns the total number of audio samples, excluding pre-skip.
func (o *oggOpusReader) duration() int64 {
	return o.lastGranule - int64(o.head.PreSkip)
}

// seekToGranule bisects to the page containing or just before target, then
// linear-scans forward to land on the exact page.
func (o *oggOpusReader) seekToGranule(target int64) error {
	if target <= 0 {
		return o.reset()
	}

	low, high := o.dataStart, o.fileSize
	bestOffset := o.dataStart

	for high-low > 4096 {
		mid := (low + high) / 2
		offset, granule, err := o.findPageNear(mid)
		if err != nil {
			high = mid
			continue
		}
		if granule <= target {
			bestOffset = offset
			low = offset + 1
		} else {
			high = mid
		}
	}

	if _, err := o.r.Seek(bestOffset, io.SeekStart); err != nil {
		return err
	}
	for {
		offset, err := o.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		hdr, err := parseOggPageHeader(o.r)
		if err != nil {
			break
		}
		var bodySize int
		for _, seg := range hdr.SegmentTable {
			bodySize += int(seg)
		}
		if _, err := o.r.Seek(int64(bodySize), io.SeekCurrent); err != nil {
			break
		}
		if hdr.GranulePos > target {
			if _, err := o.r.Seek(bestOffset, io.SeekStart); err != nil {
				return err
			}
			break
		}
		if hdr.GranulePos >= 0 {
			bestOffset = offset
		}
	}

	_, err := o.r.Seek(bestOffset, io.SeekStart)
	return err
}

func (o *oggOpusReader) findPageNear(offset int64) (pageOffset, granule int64, err error) {
	if _, err := o.r.Seek(offset, io.SeekStart); err != nil {
		return 0, 0, err
	}
	buf := make([]byte, 4096)
	n, readErr := o.r.Read(buf)
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return 0, 0, readErr
	}
	buf = buf[:n]
	for i := 0; i <= len(buf)-27; i++ {
		if string(buf[i:i+4]) == oggMagic && buf[i+4] == 0 {
			pageOffset = offset + int64(i)
			granule = int64(binary.LittleEndian.Uint64(buf[i+6 : i+14]))
			return pageOffset, granule, nil
		}
	}
	return 0, 0, errors.New("ogg: no page found")
}

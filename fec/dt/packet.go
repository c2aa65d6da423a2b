/*
NAME
  packet.go

DESCRIPTION
  packet.go implements the full TAV-DT per-packet byte layout of
  spec.md §6.2: main sync + LDPC main header, TAD sub-packet (LDPC
  sub-header + RS payload), TAV sub-packet sync + LDPC sub-header + RS
  payload.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dt

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/tsvm/tav/fec/ldpc"
	"github.com/tsvm/tav/fec/rs"
)

// ErrSyncPatternMissing is returned when an expected sync pattern is
// not where the framing requires it.
var ErrSyncPatternMissing = errors.New("dt: sync pattern missing")

// Packet is one fully decoded TAV-DT packet.
type Packet struct {
	Sync        uint32 // SyncNTSC or SyncPAL.
	Main        *MainHeader
	MainLDPCOK  bool
	MainCRCOK   bool
	TADHeader   *TADSubHeader
	TADLDPCOK   bool
	TADPayload  []byte
	TADRSErrors int
	TAVHeader   *TAVSubHeader
	TAVLDPCOK   bool
	TAVPayload  []byte
	TAVRSErrors int
}

func readFull(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadPacket reads one complete TAV-DT packet assuming the main sync
// pattern has already been consumed (by ResyncMain or a prior
// ReadPacket). sync is the pattern that was matched.
func ReadPacket(r *bufio.Reader, sync uint32) (*Packet, error) {
	p := &Packet{Sync: sync}

	encHdr, err := readFull(r, ldpc.HeaderEncodedSize)
	if err != nil {
		return nil, err
	}
	rawHdr, mainOK := ldpc.Decode(encHdr)
	p.MainLDPCOK = mainOK
	main, cerr := DecodeMainHeader(rawHdr)
	p.Main = main
	p.MainCRCOK = cerr == nil
	if cerr != nil && cerr != ErrBadCRC {
		return nil, cerr
	}

	tadRaw, tadOK, err := readSubHeader(r)
	if err != nil {
		return nil, err
	}
	p.TADLDPCOK = tadOK
	tadHdr, _ := DecodeTADSubHeader(tadRaw)
	p.TADHeader = tadHdr

	tadBlocks := int(tadHdr.RSBlockCount)
	tadCW, err := readFull(r, tadBlocks*rs.N)
	if err != nil {
		return nil, err
	}
	p.TADPayload, p.TADRSErrors, err = rs.DecodePayload(tadCW, int(tadHdr.CompressedSize))
	if err != nil {
		p.TADPayload = nil
	}

	if err := expectTAVSubSync(r); err != nil {
		return nil, err
	}

	tavRaw, tavOK, err := readSubHeader(r)
	if err != nil {
		return nil, err
	}
	p.TAVLDPCOK = tavOK
	tavHdr, _ := DecodeTAVSubHeader(tavRaw)
	p.TAVHeader = tavHdr

	tavBlocks := int(tavHdr.RSBlockCount)
	tavCW, err := readFull(r, tavBlocks*rs.N)
	if err != nil {
		return nil, err
	}
	p.TAVPayload, p.TAVRSErrors, err = rs.DecodePayload(tavCW, int(tavHdr.CompressedSize))
	if err != nil {
		p.TAVPayload = nil
	}

	return p, nil
}

func readSubHeader(r *bufio.Reader) (raw []byte, ok bool, err error) {
	enc, err := readFull(r, ldpc.SubHeaderEncodedSize)
	if err != nil {
		return nil, false, err
	}
	raw, ok = ldpc.Decode(enc)
	return raw, ok, nil
}

// WritePacket serialises p in the full §6.2 wire layout.
func WritePacket(w io.Writer, sync uint32, main *MainHeader, tadHdr *TADSubHeader, tadPayload []byte, tavHdr *TAVSubHeader, tavPayload []byte) error {
	var syncB [4]byte
	syncB[0], syncB[1], syncB[2], syncB[3] = byte(sync>>24), byte(sync>>16), byte(sync>>8), byte(sync)
	if _, err := w.Write(syncB[:]); err != nil {
		return err
	}

	encMain, err := ldpc.EncodeHeader(main.Encode())
	if err != nil {
		return err
	}
	if _, err := w.Write(encMain); err != nil {
		return err
	}

	tadCW := rs.EncodePayload(tadPayload)
	tadHdr.RSBlockCount = uint32((len(tadCW) + rs.N - 1) / rs.N)
	tadHdr.CompressedSize = uint32(len(tadPayload))
	encTAD, err := ldpc.EncodeSubHeader(tadHdr.Encode())
	if err != nil {
		return err
	}
	if _, err := w.Write(encTAD); err != nil {
		return err
	}
	if _, err := w.Write(tadCW); err != nil {
		return err
	}

	var subB [4]byte
	subB[0], subB[1], subB[2], subB[3] = byte(SyncTAVSub>>24), byte(SyncTAVSub>>16), byte(SyncTAVSub>>8), byte(SyncTAVSub)
	if _, err := w.Write(subB[:]); err != nil {
		return err
	}

	tavCW := rs.EncodePayload(tavPayload)
	tavHdr.RSBlockCount = uint32((len(tavCW) + rs.N - 1) / rs.N)
	tavHdr.CompressedSize = uint32(len(tavPayload))
	encTAV, err := ldpc.EncodeSubHeader(tavHdr.Encode())
	if err != nil {
		return err
	}
	if _, err := w.Write(encTAV); err != nil {
		return err
	}
	_, err = w.Write(tavCW)
	return err
}

package digi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"
)

// Binary layout of the truth-hit event files produced by the simulation
// export step. Little endian, one header per event followed by the packed
// hit records.

type SimEventMagicType uint32

const SIM_EVENT_MAGIC SimEventMagicType = 0x51D17A6E

type SimEventTypeType uint32

const (
	SIM_START_OF_RUN SimEventTypeType = iota + 1
	SIM_END_OF_RUN
	SIM_PHYSICS_EVENT
	SIM_CALIBRATION_EVENT
)

type SimEventHeaderStruct struct {
	EventSize          uint32
	EventMagic         SimEventMagicType
	EventType          SimEventTypeType
	EventRunNb         uint32
	EventId            uint32
	EventNHits         uint32
	EventTimestampSec  uint32
	EventTimestampUsec uint32
}

// SimHitRecord is the packed on-disk form of one truth hit. All fields are
// 8 bytes wide, so the in-memory and on-disk sizes match.
type SimHitRecord struct {
	CellID      uint64
	EDep        float64
	Time        float64
	PosX        float64
	PosY        float64
	PosZ        float64
	ParticleRef uint64
}

func ValidEvent(header SimEventHeaderStruct) bool {
	return header.EventType == SIM_PHYSICS_EVENT || header.EventType == SIM_CALIBRATION_EVENT
}

// ReadEventFromFile reads the next event header and its raw payload.
func ReadEventFromFile(file *os.File) (SimEventHeaderStruct, []byte, error) {
	var header SimEventHeaderStruct
	headerSize := unsafe.Sizeof(header)
	headerBinary := make([]byte, headerSize)
	nRead, err := file.Read(headerBinary)
	if err != nil {
		return header, nil, err
	}
	if nRead == 0 {
		return header, nil, io.EOF
	}

	headerReader := bytes.NewReader(headerBinary)
	binary.Read(headerReader, binary.LittleEndian, &header)
	if header.EventMagic != SIM_EVENT_MAGIC {
		return header, nil, fmt.Errorf("bad event magic 0x%08x", uint32(header.EventMagic))
	}

	payloadSize := header.EventSize - uint32(headerSize)
	eventData := make([]byte, payloadSize)
	file.Read(eventData)
	return header, eventData, nil
}

// DecodeSimHits unpacks the hit records of one event payload.
func DecodeSimHits(header SimEventHeaderStruct, eventData []byte) ([]SimHit, error) {
	var record SimHitRecord
	recordSize := int(unsafe.Sizeof(record))
	if len(eventData) < int(header.EventNHits)*recordSize {
		return nil, fmt.Errorf("event %d payload too short: %d bytes for %d hits",
			header.EventId, len(eventData), header.EventNHits)
	}

	hits := make([]SimHit, header.EventNHits)
	reader := bytes.NewReader(eventData)
	for i := range hits {
		if err := binary.Read(reader, binary.LittleEndian, &record); err != nil {
			return nil, fmt.Errorf("error reading hit %d of event %d: %w", i, header.EventId, err)
		}
		hits[i] = SimHit{
			CellID:      record.CellID,
			EDep:        record.EDep,
			Time:        record.Time,
			Position:    [3]float64{record.PosX, record.PosY, record.PosZ},
			ParticleRef: record.ParticleRef,
		}
	}
	return hits, nil
}

// WriteEventToFile appends one event in the same binary layout. Used by the
// simulation export tooling and the tests.
func WriteEventToFile(file *os.File, header SimEventHeaderStruct, hits []SimHit) error {
	var record SimHitRecord
	headerSize := uint32(unsafe.Sizeof(header))
	recordSize := uint32(unsafe.Sizeof(record))

	header.EventMagic = SIM_EVENT_MAGIC
	header.EventNHits = uint32(len(hits))
	header.EventSize = headerSize + recordSize*uint32(len(hits))

	buffer := new(bytes.Buffer)
	if err := binary.Write(buffer, binary.LittleEndian, &header); err != nil {
		return err
	}
	for _, hit := range hits {
		record = SimHitRecord{
			CellID:      hit.CellID,
			EDep:        hit.EDep,
			Time:        hit.Time,
			PosX:        hit.Position[0],
			PosY:        hit.Position[1],
			PosZ:        hit.Position[2],
			ParticleRef: hit.ParticleRef,
		}
		if err := binary.Write(buffer, binary.LittleEndian, &record); err != nil {
			return err
		}
	}
	_, err := file.Write(buffer.Bytes())
	return err
}

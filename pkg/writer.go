package digi

import (
	"errors"
	"fmt"
	"reflect"

	hdf5 "github.com/next-exp/hdf5-go"
)

// Writer persists digitized events to an HDF5 file: run metadata and the
// digitization parameters under /Run, the raw hits and per-event
// diagnostics under /RD.
type Writer struct {
	File         *hdf5.File
	Filename     string
	FirstEvt     bool
	RunGroup     *hdf5.Group
	RDGroup      *hdf5.Group
	EventTable   *hdf5.Dataset
	RunInfoTable *hdf5.Dataset
	ParamsTable  *hdf5.Dataset
	HitsTable    *hdf5.Dataset
	StatsTable   *hdf5.Dataset
	EvtCounter   int
	HitCounter   int
}

func NewWriter(filename string) *Writer {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	if configuration.UseBlosc {
		blosc_version, blosc_date, err := hdf5.RegisterBlosc()
		if configuration.Verbosity > 0 {
			message := fmt.Sprintf("Blosc version: %s (%s)", blosc_version, blosc_date)
			logger.Info(message, "writer")
		}
		if err != nil {
			logger.Error(err.Error())
		}
	}

	writer := &Writer{}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Creating file: %s", filename)
		logger.Info(message, "writer")
	}
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.RDGroup = createGroup(writer.File, "RD")
	writer.EventTable = createTable(writer.RunGroup, "events", EventDataHDF5{})
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.ParamsTable = createTable(writer.RunGroup, "configuration", DigiParamHDF5{})
	writer.HitsTable = createTable(writer.RDGroup, "hits", RawHitHDF5{})
	writer.StatsTable = createTable(writer.RDGroup, "stats", DigiStatsHDF5{})
	writer.EvtCounter = 0
	writer.HitCounter = 0
	return writer
}

func (w *Writer) WriteEvent(event *EventType) {
	if !w.FirstEvt {
		writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(event.RunNumber)}, 0)
		w.writeDigiConfiguration(configuration)
		w.FirstEvt = true
	}

	writeEntryToTable(w.EventTable, EventDataHDF5{
		evt_number: int32(event.EventID),
		timestamp:  event.Timestamp,
		nhits:      int32(len(event.RawHits)),
	}, w.EvtCounter)

	writeEntryToTable(w.StatsTable, DigiStatsHDF5{
		evt_number:    int32(event.EventID),
		hits_in:       int32(event.Stats.HitsIn),
		out_of_window: int32(event.Stats.HitsOutOfWindow),
		unknown_ch:    int32(event.Stats.UnknownChannels),
		saturated:     int32(event.Stats.Saturated),
		suppressed:    int32(event.Stats.Suppressed),
	}, w.EvtCounter)

	if len(event.RawHits) > 0 {
		// The array MUST be allocated at creation, if not, HDF5 will panic
		// doing appends will not work
		hits := make([]RawHitHDF5, len(event.RawHits))
		for i, hit := range event.RawHits {
			hits[i] = RawHitHDF5{
				evt_number: int32(event.EventID),
				cell_id:    hit.CellID,
				adc:        hit.ADC,
				tdc:        hit.TDC,
			}
		}
		writeArrayToTable(w.HitsTable, &hits, w.HitCounter)
		w.HitCounter += len(hits)
	}

	w.EvtCounter++
}

// writeDigiConfiguration stores the numeric digitization parameters next to
// the data so a file is self-describing. Only scalar fields are written.
func (w *Writer) writeDigiConfiguration(config Configuration) {
	t := reflect.TypeOf(config)
	n := t.NumField()
	entries := make([]DigiParamHDF5, n)

	fieldsToWrite := 0
	for i := 0; i < n; i++ {
		f := t.Field(i)
		paramName := f.Tag.Get("json")
		value := reflect.ValueOf(config).Field(i)
		switch f.Type.Kind() {
		case reflect.Float64:
			entries[fieldsToWrite] = DigiParamHDF5{
				paramStr: convertToHdf5String(paramName),
				value:    value.Float(),
			}
			fieldsToWrite++
		case reflect.Int, reflect.Int64:
			entries[fieldsToWrite] = DigiParamHDF5{
				paramStr: convertToHdf5String(paramName),
				value:    float64(value.Int()),
			}
			fieldsToWrite++
		}
	}
	toWrite := entries[:fieldsToWrite]
	writeArrayToTable(w.ParamsTable, &toWrite, 0)
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Closing file: %s", w.Filename)
		logger.Info(message, "writer")
	}
	var errs []error

	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.ParamsTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing configuration table: %w", err))
	}
	if err := w.HitsTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing hits table: %w", err))
	}
	if err := w.StatsTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing stats table: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.RDGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing RD group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ProcessDigitizedEvent writes one digitized event if writing is enabled
// and the event is not flagged as failed.
func ProcessDigitizedEvent(event EventType, configuration Configuration, writer *Writer) {
	if configuration.WriteData && !event.Error {
		writer.WriteEvent(&event)
	}
}

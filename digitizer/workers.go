package main

import (
	"fmt"
	"io"

	digi "github.com/eic-npg/tofdigi_go/pkg"
)

type WorkerData struct {
	Data   []byte
	Header digi.SimEventHeaderStruct
}

// worker digitizes events from the jobs channel. Every worker owns a
// private engine instance with its own random stream; the stream is
// reseeded per event from the base seed and the event id, so the output
// does not depend on which worker picks up which event.
func worker(id int, geo *digi.Geometry, jobs <-chan WorkerData, results chan<- digi.EventType) {
	engine, err := digi.NewDigitizer(configuration, geo, configuration.Seed)
	if err != nil {
		// Configuration was validated in main, this should not happen
		logger.Error(fmt.Sprintf("Worker %d failed to build engine: %v", id, err))
		for range jobs {
			results <- digi.EventType{Error: true}
		}
		return
	}

	for job := range jobs {
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Worker %d processing event %d", id, job.Header.EventId)
			logger.Info(message, "worker")
		}
		results <- digitizeEvent(engine, job)
	}
}

func digitizeEvent(engine *digi.Digitizer, job WorkerData) (event digi.EventType) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("digitizer recovered from panic on event %d: %v", job.Header.EventId, r)
			logger.Error(errMessage.Error())
			message := fmt.Sprintf("discarding event %d", job.Header.EventId)
			logger.Error(message)
			event = digi.EventType{EventID: job.Header.EventId, Error: true}
		}
	}()

	hits, err := digi.DecodeSimHits(job.Header, job.Data)
	if err != nil {
		message := fmt.Errorf("error decoding truth hits: %w", err)
		logger.Error(message.Error())
		return digi.EventType{EventID: job.Header.EventId, Error: true}
	}

	engine.Reseed(configuration.Seed + int64(job.Header.EventId))
	rawHits, stats := engine.Execute(hits)

	timestamp := uint64(job.Header.EventTimestampSec)*1000000 + uint64(job.Header.EventTimestampUsec)
	return digi.EventType{
		RunNumber: job.Header.EventRunNb,
		EventID:   job.Header.EventId,
		Timestamp: timestamp,
		SimHits:   hits,
		RawHits:   rawHits,
		Stats:     stats,
	}
}

func sendEventsToWorkers(fileReader *FileReader, jobs chan<- WorkerData) {
	for {
		header, eventData, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			break
		}
		jobs <- WorkerData{Data: eventData, Header: header}
	}
	close(jobs)
}

package digi

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

// ConnectToDatabase opens the run-conditions database on the central MySQL
// server.
func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// OpenLocalDatabase opens a file-backed copy of the conditions database.
// Used for runs without network access; the same queries work against both
// backends.
func OpenLocalDatabase(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	return db, err
}

type TopologyEntry struct {
	NPhi        int     `db:"NPhi"`
	SubBins     int     `db:"SubBins"`
	BarLength   float64 `db:"BarLength"`
	Granularity int     `db:"Granularity"`
}

type PedestalEntry struct {
	Channel  int     `db:"Channel"`
	PedMean  float64 `db:"PedMean"`
	PedSigma float64 `db:"PedSigma"`
}

// TopologyFromDB reads the barrel topology valid for the given run.
func TopologyFromDB(db *sqlx.DB, runNumber int) (Topology, error) {
	query := "SELECT NPhi, SubBins, BarLength, Granularity FROM Topology WHERE MinRun <= %d and MaxRun >= %d"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Topology read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return Topology{}, errMessage
	}
	defer rows.Close()

	if !rows.Next() {
		return Topology{}, fmt.Errorf("no topology defined for run %d", runNumber)
	}
	result := TopologyEntry{}
	if err := rows.StructScan(&result); err != nil {
		return Topology{}, fmt.Errorf("error scanning DB row: %w", err)
	}
	return Topology{
		NPhi:        result.NPhi,
		SubBins:     result.SubBins,
		BarLength:   result.BarLength,
		Granularity: result.Granularity,
	}, nil
}

// LoadConditions applies the per-channel pedestal calibration valid for the
// given run to the geometry arena. Channels without a calibration entry
// keep the configured defaults.
func LoadConditions(db *sqlx.DB, runNumber int, geo *Geometry) error {
	query := "SELECT Channel, PedMean, PedSigma FROM ChannelPedestals WHERE MinRun <= %d and MaxRun >= %d ORDER BY Channel"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Channel pedestals read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		logger.Error(errMessage.Error())
		return errMessage
	}
	defer rows.Close()

	nChannels := 0
	for rows.Next() {
		result := PedestalEntry{}
		if err := rows.StructScan(&result); err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			logger.Error(errMessage.Error())
			return errMessage
		}
		record := ChannelRecord{
			PedestalMean:  result.PedMean,
			PedestalSigma: result.PedSigma,
		}
		if err := geo.SetChannelConditions(result.Channel, record); err != nil {
			message := fmt.Sprintf("Skipping pedestal for channel %d: %v", result.Channel, err)
			logger.Info(message, "database")
			continue
		}
		nChannels++
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Loaded pedestals for %d channels", nChannels)
		logger.Info(message, "database")
	}
	return nil
}

package database

import (
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"strconv"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

type PairbotDatabase interface {
	RunsDatabase
	Close() error
}

type databaseImplementation struct {
	gormDb *gorm.DB
}

func NewDBConnection(dbConfig datamodels.PostgresConfig) (PairbotDatabase, error) {
	dbConnString := MakeConnectionString(&dbConfig)

	gormConfig := &gorm.Config{
		Logger: slogGorm.New(),
	}

	gormDb, err := gorm.Open(postgres.Open(dbConnString), gormConfig)
	if err != nil {
		return nil, errors.WrapE(err, errors.New("cannot create gorm engine"))
	}

	slog.Info("Connected to database", "host", dbConfig.Host, "database", dbConfig.Database, "user", dbConfig.User)

	return newDatabase(gormDb), nil
}

func newDatabase(gormDb *gorm.DB) *databaseImplementation {
	return &databaseImplementation{gormDb: gormDb}
}

// Migrate creates or updates the run tables.
func (d *databaseImplementation) Migrate() error {
	if err := d.gormDb.AutoMigrate(DbTables...); err != nil {
		return errors.Wrap(err, "failed to migrate run tables")
	}
	return nil
}

func (d *databaseImplementation) Close() error {
	sqlDb, err := d.gormDb.DB()
	if err != nil {
		return errors.Wrap(err, "cannot get sql handle")
	}
	return sqlDb.Close()
}

func MakeConnectionString(dbConfig *datamodels.PostgresConfig) string {
	if dbConfig.URI != "" { // If url is provided, use it
		return dbConfig.URI
	}

	sslMode := dbConfig.SSL.Mode
	if sslMode == "" {
		sslMode = "disable"
	}
	ssl := "sslmode=" + sslMode

	if sslMode != "disable" {
		sslFiles := []struct{ param, content string }{
			{"sslcert", dbConfig.SSL.Cert},
			{"sslkey", dbConfig.SSL.Key},
			{"sslrootcert", dbConfig.SSL.CA},
		}

		for _, sslFile := range sslFiles {
			if sslFile.content != "" {
				file, err := writeCertificate(sslFile.content, sslFile.param+".pem")
				if err != nil {
					slog.Error("Error writing "+sslFile.param+" to file", "error", err)
					continue
				}

				ssl += "&" + sslFile.param + "=" + file
			}
		}
	}

	hostPort := net.JoinHostPort(dbConfig.Host, strconv.Itoa(dbConfig.Port))

	if dbConfig.Password == "" {
		slog.Warn("No password provided for database connection, using empty password")
		return fmt.Sprintf("postgres://%s@%s/%s?search_path=public&%s",
			dbConfig.User,
			hostPort,
			dbConfig.Database,
			ssl,
		)
	}

	return fmt.Sprintf("postgres://%s:%s@%s/%s?search_path=public&%s",
		dbConfig.User,
		dbConfig.Password,
		hostPort,
		dbConfig.Database,
		ssl,
	)
}

func writeCertificate(content string, outFile string) (string, error) {
	tempFile, err := os.CreateTemp("", outFile)
	if err != nil {
		return "", err
	}

	_, err = tempFile.WriteString(content)
	if err != nil {
		tempFile.Close()

		return "", err
	}

	err = tempFile.Close()
	if err != nil {
		log.Printf("Error closing %s: %v\n", outFile, err)
	}

	return tempFile.Name(), nil
}
